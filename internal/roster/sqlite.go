package roster

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// GodDB is the SQLite-backed Repository. The database lives in the
// user's config directory and is seeded on first open.
type GodDB struct {
	db *sql.DB
}

// NewGodDB opens (and if necessary creates and seeds) the god database.
func NewGodDB() (*GodDB, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}

	dbDir := filepath.Join(configDir, "AssaultBrain")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	return NewGodDBAtPath(filepath.Join(dbDir, "gods.db"))
}

// NewGodDBAtPath opens the god database at an explicit path. Tests use
// this with a temp directory.
func NewGodDBAtPath(dbPath string) (*GodDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	gdb := &GodDB{db: db}
	if err := gdb.init(); err != nil {
		db.Close()
		return nil, err
	}

	return gdb, nil
}

// init creates the schema and populates data
func (g *GodDB) init() error {
	_, err := g.db.Exec(`
		CREATE TABLE IF NOT EXISTS gods (
			key TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			win_rate REAL NOT NULL,
			early_power REAL NOT NULL,
			late_power REAL NOT NULL,
			team_fight REAL NOT NULL,
			counters TEXT NOT NULL,
			key_strength TEXT NOT NULL,
			key_weakness TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	var count int
	g.db.QueryRow("SELECT COUNT(*) FROM gods").Scan(&count)
	if count > 0 {
		return nil // Already populated
	}

	return g.populate()
}

// populate inserts the seed god data
func (g *GodDB) populate() error {
	gods := []GodProfile{
		{"Zeus", "Mage", 0.68, 6, 9, 10, []string{"Odin", "Ares", "Thor"}, "Massive team fight damage", "No escape from dive"},
		{"Ares", "Guardian", 0.72, 7, 8, 10, []string{"Beads", "Spread formation"}, "Game-changing ultimate", "No peel for carries"},
		{"Loki", "Assassin", 0.42, 8, 4, 3, []string{"Mystical Mail", "Group positioning"}, "High single target burst", "Useless in team fights"},
		{"Aphrodite", "Mage", 0.75, 5, 9, 9, []string{"Divine Ruin", "Antiheal"}, "Team healing and sustain", "Countered by antiheal"},
		{"Neith", "Hunter", 0.58, 6, 7, 7, []string{"Dive comps", "Cripples"}, "Global ultimate utility", "Lower DPS than other hunters"},
		{"Ra", "Mage", 0.62, 7, 8, 8, []string{"Dive comps", "High mobility"}, "Strong healing and poke", "Skillshot dependent"},
		{"Ymir", "Guardian", 0.65, 8, 6, 8, []string{"High mobility", "Beads"}, "Strong early game CC", "Falls off late game"},
		{"Kukulkan", "Mage", 0.64, 4, 10, 9, []string{"Early pressure", "Dive"}, "Incredible late game scaling", "Weak early game"},
		{"Thor", "Assassin", 0.59, 8, 6, 7, []string{"Beads", "Spread formation"}, "Global presence and setup", "Combo dependent"},
		{"Artemis", "Hunter", 0.61, 5, 9, 8, []string{"Early pressure", "No escape"}, "Highest DPS potential", "No mobility/escape"},
		{"Sobek", "Guardian", 0.66, 7, 7, 8, []string{"Beads", "Positioning"}, "Strong initiation and peel", "Mana hungry early game"},
	}

	tx, err := g.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO gods
		(key, name, role, win_rate, early_power, late_power, team_fight, counters, key_strength, key_weakness)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, god := range gods {
		_, err := stmt.Exec(
			NormalizeName(god.Name), god.Name, god.Role,
			god.WinRate, god.EarlyPower, god.LatePower, god.TeamFight,
			strings.Join(god.Counters, ","), god.KeyStrength, god.KeyWeakness,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Lookup returns the profile for a god by (possibly unnormalized) name.
func (g *GodDB) Lookup(ctx context.Context, name string) (*GodProfile, error) {
	var p GodProfile
	var counters string
	err := g.db.QueryRowContext(ctx, `
		SELECT name, role, win_rate, early_power, late_power, team_fight, counters, key_strength, key_weakness
		FROM gods WHERE key = ?`,
		NormalizeName(name),
	).Scan(&p.Name, &p.Role, &p.WinRate, &p.EarlyPower, &p.LatePower, &p.TeamFight, &counters, &p.KeyStrength, &p.KeyWeakness)

	if err == sql.ErrNoRows {
		return nil, ErrGodNotFound
	}
	if err != nil {
		return nil, err
	}
	if counters != "" {
		p.Counters = strings.Split(counters, ",")
	}
	return &p, nil
}

// Count returns the number of seeded gods.
func (g *GodDB) Count() (int, error) {
	var count int
	err := g.db.QueryRow("SELECT COUNT(*) FROM gods").Scan(&count)
	return count, err
}

// Close closes the database connection
func (g *GodDB) Close() error {
	return g.db.Close()
}
