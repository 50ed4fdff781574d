//go:build !windows

package main

import (
	"bufio"
	"log"
	"os"
	"strings"

	"assaultbrain/internal/orchestrator"
)

// registerManualTriggers reads trigger commands from stdin on platforms
// without a global keyboard hook: "a" analyzes now, "s" analyzes the
// scoreboard.
func registerManualTriggers(orch *orchestrator.Orchestrator) {
	go func() {
		log.Printf("[Hotkey] Type 'a' + Enter to analyze, 's' + Enter for scoreboard")
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
			case "a":
				orch.TriggerHotkey()
			case "s":
				orch.TriggerScoreboard()
			}
		}
	}()
}
