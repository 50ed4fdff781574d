package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"assaultbrain/internal/roster"
)

// Weights parameterizes the scoring formula. Assault games skew toward
// team fighting and late-game scaling, hence the defaults.
type Weights struct {
	TeamFight float64
	LateGame  float64
	EarlyGame float64
	WinRate   float64

	GuardianBonus float64
	HunterBonus   float64
	MageBonus     float64

	MinProbability float64
	MaxProbability float64
}

// DefaultWeights returns the standard Assault weighting.
func DefaultWeights() Weights {
	return Weights{
		TeamFight:      3.0,
		LateGame:       2.0,
		EarlyGame:      1.0,
		WinRate:        10,
		GuardianBonus:  5,
		HunterBonus:    3,
		MageBonus:      3,
		MinProbability: 0.1,
		MaxProbability: 0.9,
	}
}

// TeamScore aggregates one side's resolved profiles.
type TeamScore struct {
	Total        float64  `json:"total"`
	AvgEarly     float64  `json:"avg_early"`
	AvgLate      float64  `json:"avg_late"`
	AvgTeamFight float64  `json:"avg_team_fight"`
	Known        []string `json:"known"`
	Unknown      []string `json:"unknown"`
}

// AnalysisResult is the full matchup report published to sinks.
type AnalysisResult struct {
	Fingerprint    string    `json:"fingerprint"`
	WinProbability float64   `json:"win_probability"`
	Ours           TeamScore `json:"ours"`
	Theirs         TeamScore `json:"theirs"`
	Strengths      []string  `json:"strengths"`
	Weaknesses     []string  `json:"weaknesses"`
	Advice         []string  `json:"advice"`
	ItemPriorities []string  `json:"item_priorities"`
	KeyMatchups    []string  `json:"key_matchups"`
	Confidence     string    `json:"confidence"`
	VoiceSummary   string    `json:"voice_summary"`
	Fallback       bool      `json:"fallback,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Engine computes matchup reports from god profiles. All threshold
// rules live here; nothing else in the repository scores a roster.
type Engine struct {
	repo    roster.Repository
	weights Weights
}

// NewEngine creates an analysis engine over the given repository.
func NewEngine(repo roster.Repository, weights Weights) *Engine {
	return &Engine{repo: repo, weights: weights}
}

// Evaluate scores ours vs theirs and generates recommendations.
// Unresolvable names are skipped and listed in the result's Unknown
// diagnostics; they never fail the analysis.
func (e *Engine) Evaluate(ctx context.Context, ours, theirs []string) (*AnalysisResult, error) {
	ourProfiles, ourScore, err := e.resolveSide(ctx, ours)
	if err != nil {
		return nil, err
	}
	theirProfiles, theirScore, err := e.resolveSide(ctx, theirs)
	if err != nil {
		return nil, err
	}

	total := ourScore.Total + theirScore.Total
	winProb := 0.5
	if total > 0 {
		winProb = clamp(ourScore.Total/total, e.weights.MinProbability, e.weights.MaxProbability)
	}

	res := &AnalysisResult{
		Fingerprint:    Fingerprint(ours, theirs),
		WinProbability: winProb,
		Ours:           ourScore,
		Theirs:         theirScore,
		Strengths:      identifyStrengths(ourProfiles, ourScore),
		Weaknesses:     identifyWeaknesses(ourProfiles, ourScore),
		Advice:         generateAdvice(ourScore, theirScore),
		ItemPriorities: suggestItems(theirProfiles),
		KeyMatchups:    findMatchups(ourProfiles, theirProfiles),
		Confidence:     confidenceLabel(len(ourProfiles)+len(theirProfiles), len(ours)+len(theirs)),
		CreatedAt:      time.Now(),
	}
	res.VoiceSummary = voiceSummary(res.WinProbability, res.Advice)
	return res, nil
}

// resolveSide looks up each name and aggregates the side's score.
func (e *Engine) resolveSide(ctx context.Context, names []string) ([]*roster.GodProfile, TeamScore, error) {
	score := TeamScore{}
	profiles := make([]*roster.GodProfile, 0, len(names))

	for _, name := range names {
		p, err := e.repo.Lookup(ctx, name)
		if errors.Is(err, roster.ErrGodNotFound) {
			log.Printf("[Engine] Unknown god %q, skipping", name)
			score.Unknown = append(score.Unknown, name)
			continue
		}
		if err != nil {
			return nil, score, fmt.Errorf("lookup %q: %w", name, err)
		}
		profiles = append(profiles, p)
		score.Known = append(score.Known, p.Name)
	}

	if len(profiles) == 0 {
		score.Total = 1.0
		return profiles, score, nil
	}

	var earlySum, lateSum, fightSum float64
	for _, p := range profiles {
		score.Total += p.TeamFight*e.weights.TeamFight +
			p.LatePower*e.weights.LateGame +
			p.EarlyPower*e.weights.EarlyGame +
			p.WinRate*e.weights.WinRate
		earlySum += p.EarlyPower
		lateSum += p.LatePower
		fightSum += p.TeamFight
	}

	roles := roleSet(profiles)
	if roles["Guardian"] {
		score.Total += e.weights.GuardianBonus
	}
	if roles["Hunter"] {
		score.Total += e.weights.HunterBonus
	}
	if roles["Mage"] {
		score.Total += e.weights.MageBonus
	}

	n := float64(len(profiles))
	score.AvgEarly = earlySum / n
	score.AvgLate = lateSum / n
	score.AvgTeamFight = fightSum / n
	return profiles, score, nil
}

func roleSet(profiles []*roster.GodProfile) map[string]bool {
	roles := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		roles[p.Role] = true
	}
	return roles
}

func roleCount(profiles []*roster.GodProfile, role string) int {
	count := 0
	for _, p := range profiles {
		if p.Role == role {
			count++
		}
	}
	return count
}

func identifyStrengths(profiles []*roster.GodProfile, score TeamScore) []string {
	var strengths []string
	if len(profiles) == 0 {
		return strengths
	}
	if score.AvgTeamFight >= 8 {
		strengths = append(strengths, "Excellent team fight potential")
	}
	if score.AvgLate >= 8 {
		strengths = append(strengths, "Strong late game scaling")
	}
	roles := roleSet(profiles)
	if roles["Guardian"] && roles["Hunter"] && roles["Mage"] {
		strengths = append(strengths, "Balanced team composition")
	}
	return strengths
}

func identifyWeaknesses(profiles []*roster.GodProfile, score TeamScore) []string {
	var weaknesses []string
	if len(profiles) == 0 {
		return weaknesses
	}
	roles := roleSet(profiles)
	if !roles["Guardian"] {
		weaknesses = append(weaknesses, "No tank/frontline")
	}
	if !roles["Hunter"] {
		weaknesses = append(weaknesses, "Lacks sustained DPS")
	}
	if roleCount(profiles, "Assassin") >= 2 {
		weaknesses = append(weaknesses, "Too many assassins for Assault")
	}
	if score.AvgTeamFight < 6 {
		weaknesses = append(weaknesses, "Weak team fight presence")
	}
	return weaknesses
}

func generateAdvice(ours, theirs TeamScore) []string {
	var advice []string
	if ours.AvgEarly > theirs.AvgEarly+1 {
		advice = append(advice, "Pressure early, you have the early game advantage")
	} else if theirs.AvgEarly > ours.AvgEarly+1 {
		advice = append(advice, "Play safe early, they are stronger early")
	}
	if ours.AvgLate > theirs.AvgLate+1 {
		advice = append(advice, "Scale to late game, you outscale them")
	} else if theirs.AvgLate > ours.AvgLate+1 {
		advice = append(advice, "End early, they outscale you")
	}
	if len(advice) == 0 {
		advice = append(advice, "Even matchup, play for objectives and positioning")
	}
	return advice
}

// healerKeys and stealthKeys are the normalized names that drive item
// counter-building.
var (
	healerKeys  = []string{"hel", "aphrodite", "change", "ra"}
	stealthKeys = []string{"loki", "serqet"}
)

func suggestItems(theirProfiles []*roster.GodProfile) []string {
	var priorities []string

	enemyKeys := make(map[string]bool, len(theirProfiles))
	for _, p := range theirProfiles {
		enemyKeys[roster.NormalizeName(p.Name)] = true
	}

	for _, key := range healerKeys {
		if enemyKeys[key] {
			priorities = append(priorities, "Rush antiheal (Divine Ruin / Toxic Blade), counter their healing")
			break
		}
	}
	for _, key := range stealthKeys {
		if enemyKeys[key] {
			priorities = append(priorities, "Consider Mystical Mail, reveals stealth")
			break
		}
	}

	physical := roleCount(theirProfiles, "Hunter") +
		roleCount(theirProfiles, "Assassin") +
		roleCount(theirProfiles, "Warrior")
	if physical >= 3 {
		priorities = append(priorities, "Build physical protection, heavy physical damage")
	}
	return priorities
}

func findMatchups(ourProfiles, theirProfiles []*roster.GodProfile) []string {
	var matchups []string
	for _, ours := range ourProfiles {
		for _, theirs := range theirProfiles {
			for _, counter := range ours.Counters {
				if counter == theirs.Name {
					matchups = append(matchups, fmt.Sprintf("%s counters %s", theirs.Name, ours.Name))
				}
			}
		}
	}
	if len(matchups) > 3 {
		matchups = matchups[:3]
	}
	return matchups
}

func confidenceLabel(known, total int) string {
	if total == 0 {
		return "low"
	}
	ratio := float64(known) / float64(total)
	switch {
	case ratio >= 0.8:
		return "high"
	case ratio >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

func voiceSummary(winProb float64, advice []string) string {
	pct := int(winProb * 100)
	var base string
	switch {
	case pct >= 70:
		base = fmt.Sprintf("Strong advantage at %d percent. ", pct)
	case pct >= 50:
		base = fmt.Sprintf("Even match at %d percent. ", pct)
	default:
		base = fmt.Sprintf("Tough match at %d percent. ", pct)
	}
	if len(advice) > 0 {
		return base + advice[0]
	}
	return base + "Good luck!"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FallbackResult is published when a computation times out. Neutral
// numbers, generic advice, never cached.
func FallbackResult(ours, theirs []string) *AnalysisResult {
	return &AnalysisResult{
		Fingerprint:    Fingerprint(ours, theirs),
		WinProbability: 0.5,
		Advice:         []string{"Analysis timed out, play a standard Assault game"},
		Confidence:     "low",
		VoiceSummary:   "Even match at 50 percent. Good luck!",
		Fallback:       true,
		CreatedAt:      time.Now(),
	}
}
