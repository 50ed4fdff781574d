package analysis

import "testing"

func TestFingerprint_PermutationInvariant(t *testing.T) {
	a := []string{"Zeus", "Ares", "Loki", "Neith", "Ra"}
	b := []string{"Thor", "Ymir", "Artemis", "Sobek", "Kukulkan"}

	base := Fingerprint(a, b)

	shuffledA := []string{"Ra", "Loki", "Zeus", "Neith", "Ares"}
	shuffledB := []string{"Sobek", "Thor", "Kukulkan", "Ymir", "Artemis"}

	if got := Fingerprint(shuffledA, b); got != base {
		t.Errorf("Shuffling side A changed fingerprint: %s != %s", got, base)
	}
	if got := Fingerprint(a, shuffledB); got != base {
		t.Errorf("Shuffling side B changed fingerprint: %s != %s", got, base)
	}
	if got := Fingerprint(shuffledA, shuffledB); got != base {
		t.Errorf("Shuffling both sides changed fingerprint: %s != %s", got, base)
	}
}

func TestFingerprint_Directional(t *testing.T) {
	a := []string{"Zeus", "Ares", "Loki", "Neith", "Ra"}
	b := []string{"Thor", "Ymir", "Artemis", "Sobek", "Kukulkan"}

	if Fingerprint(a, b) == Fingerprint(b, a) {
		t.Error("Swapping sides must produce a different fingerprint")
	}

	// Identical rosters on both sides are the one symmetric case
	if Fingerprint(a, a) != Fingerprint(a, a) {
		t.Error("Fingerprint must be deterministic")
	}
}

func TestFingerprint_Normalizes(t *testing.T) {
	a := []string{"Zeus", "Ares", "Loki", "Neith", "Ra"}
	b := []string{"Thor", "Ymir", "Artemis", "Sobek", "Kukulkan"}
	messy := []string{"ZEUS ", " ares", "Loki", "neith", "RA"}

	if Fingerprint(a, b) != Fingerprint(messy, b) {
		t.Error("Case and whitespace variants must map to the same fingerprint")
	}
}
