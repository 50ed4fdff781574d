//go:build windows

package main

import (
	"log"
	"syscall"
	"unsafe"

	"assaultbrain/internal/orchestrator"
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	procSetWindowsHookEx = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx   = user32.NewProc("CallNextHookEx")
	procGetMessage       = user32.NewProc("GetMessageW")
)

const (
	WH_KEYBOARD_LL = 13
	WM_KEYDOWN     = 0x0100
	VK_F1          = 0x70
	VK_TAB         = 0x09
)

// KBDLLHOOKSTRUCT contains information about a low-level keyboard input event
type KBDLLHOOKSTRUCT struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type MSG struct {
	HWND    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

var (
	orchInstance *orchestrator.Orchestrator
	keyboardHook uintptr
)

// keyboardProc is the low-level keyboard hook callback
func keyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 && wParam == WM_KEYDOWN && orchInstance != nil {
		kbStruct := (*KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))
		switch kbStruct.VkCode {
		case VK_F1:
			go orchInstance.TriggerHotkey()
		case VK_TAB:
			// Tab brings up the scoreboard; give it a moment to render
			go orchInstance.TriggerScoreboard()
		}
	}
	ret, _, _ := procCallNextHookEx.Call(keyboardHook, uintptr(nCode), wParam, lParam)
	return ret
}

// registerManualTriggers installs a low-level keyboard hook for F1
// (analyze now) and Tab (scoreboard analyze).
func registerManualTriggers(orch *orchestrator.Orchestrator) {
	orchInstance = orch

	go func() {
		callback := syscall.NewCallback(keyboardProc)

		ret, _, err := procSetWindowsHookEx.Call(
			WH_KEYBOARD_LL,
			callback,
			0,
			0,
		)
		if ret == 0 {
			log.Printf("[Hotkey] Failed to install keyboard hook: %v", err)
			return
		}
		keyboardHook = ret
		log.Printf("[Hotkey] F1 analyzes now, Tab analyzes the scoreboard")

		// Message loop to keep the hook alive
		var msg MSG
		for {
			ret, _, _ := procGetMessage.Call(
				uintptr(unsafe.Pointer(&msg)),
				0, 0, 0,
			)
			if ret == 0 {
				break
			}
		}
	}()
}
