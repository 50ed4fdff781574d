package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"assaultbrain/internal/analysis"
	"assaultbrain/internal/config"
	"assaultbrain/internal/roster"
)

func main() {
	name := flag.String("name", "", "Look up a single god profile")
	ours := flag.String("ours", "", "Comma-separated ally roster (5 gods) for a one-shot analysis")
	theirs := flag.String("theirs", "", "Comma-separated enemy roster (5 gods) for a one-shot analysis")
	flag.Parse()

	cfg := config.Load()

	var repo roster.Repository
	var err error
	if cfg.DatabaseURL != "" {
		repo, err = roster.NewPostgresDB(context.Background(), cfg.DatabaseURL)
	} else {
		repo, err = roster.NewGodDB()
	}
	if err != nil {
		log.Fatalf("Failed to open god database: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	switch {
	case *name != "":
		lookupGod(ctx, repo, *name)
	case *ours != "" && *theirs != "":
		analyzeMatchup(ctx, repo, splitRoster(*ours), splitRoster(*theirs))
	default:
		fmt.Println("Usage:")
		fmt.Println("  gods --name=zeus")
		fmt.Println("  gods --ours='zeus,ares,neith,ra,ymir' --theirs='loki,thor,artemis,sobek,kukulkan'")
		os.Exit(1)
	}
}

func splitRoster(s string) []string {
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

func lookupGod(ctx context.Context, repo roster.Repository, name string) {
	p, err := repo.Lookup(ctx, name)
	if err != nil {
		log.Fatalf("Lookup %q: %v", name, err)
	}
	fmt.Printf("%s (%s)\n", p.Name, p.Role)
	fmt.Printf("  Win rate:    %.0f%%\n", p.WinRate*100)
	fmt.Printf("  Early/Late:  %.0f / %.0f\n", p.EarlyPower, p.LatePower)
	fmt.Printf("  Team fight:  %.0f\n", p.TeamFight)
	fmt.Printf("  Strength:    %s\n", p.KeyStrength)
	fmt.Printf("  Weakness:    %s\n", p.KeyWeakness)
	if len(p.Counters) > 0 {
		fmt.Printf("  Countered by: %s\n", strings.Join(p.Counters, ", "))
	}
}

func analyzeMatchup(ctx context.Context, repo roster.Repository, ours, theirs []string) {
	if len(ours) != 5 || len(theirs) != 5 {
		log.Fatalf("Need exactly 5 gods per side, got %d vs %d", len(ours), len(theirs))
	}

	engine := analysis.NewEngine(repo, analysis.DefaultWeights())
	res, err := engine.Evaluate(ctx, ours, theirs)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("Win probability: %.0f%% (%s confidence)\n", res.WinProbability*100, res.Confidence)
	printList("Strengths", res.Strengths)
	printList("Weaknesses", res.Weaknesses)
	printList("Advice", res.Advice)
	printList("Item priorities", res.ItemPriorities)
	printList("Key matchups", res.KeyMatchups)
	if len(res.Ours.Unknown) > 0 || len(res.Theirs.Unknown) > 0 {
		fmt.Printf("Unknown gods skipped: %s\n",
			strings.Join(append(res.Ours.Unknown, res.Theirs.Unknown...), ", "))
	}
	fmt.Printf("\n%s\n", res.VoiceSummary)
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}
