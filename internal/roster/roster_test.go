package roster

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Zeus", "zeus"},
		{"ZEUS", "zeus"},
		{"Chang'e", "change"},
		{"  Ah Muzen Cab ", "ahmuzencab"},
		{"He Bo", "hebo"},
		{"loki", "loki"},
	}

	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGodDB_SeedAndLookup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gods.db")
	db, err := NewGodDBAtPath(dbPath)
	if err != nil {
		t.Fatalf("NewGodDBAtPath: %v", err)
	}
	defer db.Close()

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 11 {
		t.Errorf("Expected 11 seeded gods, got %d", count)
	}

	ctx := context.Background()

	// Lookup is case and whitespace insensitive
	for _, name := range []string{"Zeus", "zeus", " ZEUS "} {
		p, err := db.Lookup(ctx, name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if p.Name != "Zeus" || p.Role != "Mage" {
			t.Errorf("Lookup(%q) = %+v, want Zeus the Mage", name, p)
		}
		if p.TeamFight != 10 {
			t.Errorf("Zeus team_fight = %v, want 10", p.TeamFight)
		}
	}

	p, err := db.Lookup(ctx, "ares")
	if err != nil {
		t.Fatalf("Lookup(ares): %v", err)
	}
	if len(p.Counters) != 2 {
		t.Errorf("Ares counters = %v, want 2 entries", p.Counters)
	}
}

func TestGodDB_LookupMiss(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gods.db")
	db, err := NewGodDBAtPath(dbPath)
	if err != nil {
		t.Fatalf("NewGodDBAtPath: %v", err)
	}
	defer db.Close()

	_, err = db.Lookup(context.Background(), "definitely-not-a-god")
	if !errors.Is(err, ErrGodNotFound) {
		t.Errorf("Expected ErrGodNotFound, got %v", err)
	}
}

func TestGodDB_ReopenDoesNotReseed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gods.db")
	db, err := NewGodDBAtPath(dbPath)
	if err != nil {
		t.Fatalf("NewGodDBAtPath: %v", err)
	}
	db.Close()

	db2, err := NewGodDBAtPath(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	count, err := db2.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 11 {
		t.Errorf("Expected 11 gods after reopen, got %d", count)
	}
}
