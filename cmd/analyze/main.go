// Command analyze plays simulated games against each preset and prints score,
// mismatch and time statistics. Games run on a virtual clock, so thousands of
// games finish in well under a second. Two players are compared: one with
// perfect memory of every revealed tile, and one that clicks at random.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Player picks the next position to click
type Player interface {
	Name() string
	Next(state *engine.GameState) int
	Observe(changes []engine.TileChange)
	Reset()
}

// MemoryPlayer never forgets a revealed value
type MemoryPlayer struct {
	rng  *rand.Rand
	seen map[int]int // position -> value
}

// NewMemoryPlayer creates a player with perfect recall
func NewMemoryPlayer(rng *rand.Rand) *MemoryPlayer {
	return &MemoryPlayer{rng: rng, seen: make(map[int]int)}
}

func (p *MemoryPlayer) Name() string { return "memory" }

func (p *MemoryPlayer) Reset() { p.seen = make(map[int]int) }

func (p *MemoryPlayer) Observe(changes []engine.TileChange) {
	for _, ch := range changes {
		if ch.Matched {
			delete(p.seen, ch.Position)
		} else if ch.Value != 0 {
			p.seen[ch.Position] = ch.Value
		}
	}
}

func (p *MemoryPlayer) Next(state *engine.GameState) int {
	if state.Phase == engine.PhaseOneSelected {
		// Partner of the selected tile, if known
		want := state.Tiles[state.Selected].Value
		for pos, v := range p.seen {
			if v == want && pos != state.Selected {
				return pos
			}
		}
		return p.unseen(state)
	}

	// A known pair is a free match
	byValue := make(map[int]int)
	for _, pos := range sortedKeys(p.seen) {
		v := p.seen[pos]
		if other, ok := byValue[v]; ok {
			return other
		}
		byValue[v] = pos
	}
	return p.unseen(state)
}

func (p *MemoryPlayer) unseen(state *engine.GameState) int {
	var candidates []int
	for _, t := range state.Tiles {
		if _, known := p.seen[t.Position]; !known && !t.Matched && !t.FaceUp {
			candidates = append(candidates, t.Position)
		}
	}
	if len(candidates) == 0 {
		// Everything is known; any unmatched tile will do
		for _, t := range state.Tiles {
			if !t.Matched && t.Position != state.Selected {
				candidates = append(candidates, t.Position)
			}
		}
	}
	return candidates[p.rng.Intn(len(candidates))]
}

// RandomPlayer remembers nothing
type RandomPlayer struct {
	rng *rand.Rand
}

// NewRandomPlayer creates a player that clicks any face-down tile
func NewRandomPlayer(rng *rand.Rand) *RandomPlayer {
	return &RandomPlayer{rng: rng}
}

func (p *RandomPlayer) Name() string { return "random" }

func (p *RandomPlayer) Reset() {}

func (p *RandomPlayer) Observe([]engine.TileChange) {}

func (p *RandomPlayer) Next(state *engine.GameState) int {
	var candidates []int
	for _, t := range state.Tiles {
		if !t.Matched && !t.FaceUp {
			candidates = append(candidates, t.Position)
		}
	}
	return candidates[p.rng.Intn(len(candidates))]
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// GameResult summarizes one finished game
type GameResult struct {
	Score      int
	Moves      int
	Mismatches int
	Elapsed    int
}

// maxClicks bounds a game against a player that never finishes
const maxClicks = 10000

// simulate plays one game to the win. thinkTime is the virtual time spent
// before each click; flip-backs wait out the preset delay.
func simulate(cfg *engine.GameConfig, player Player, rng *rand.Rand, thinkTime time.Duration) (GameResult, error) {
	sched := engine.NewManualScheduler()
	eng, err := engine.NewEngine(cfg, sched, engine.WithRand(rng))
	if err != nil {
		return GameResult{}, err
	}
	player.Reset()

	for clicks := 0; !eng.IsWon(); clicks++ {
		if clicks >= maxClicks {
			return GameResult{}, fmt.Errorf("%s player did not finish within %d clicks", player.Name(), maxClicks)
		}
		sched.Advance(thinkTime)

		res := eng.Click(player.Next(eng.GetState()))
		player.Observe(res.Changes)
		if res.Outcome == engine.OutcomeMismatch {
			sched.Advance(cfg.FlipBackDelay())
		}
	}

	return GameResult{
		Score:      eng.GetScore(),
		Moves:      eng.GetState().Moves,
		Mismatches: eng.GetState().Mismatches,
		Elapsed:    eng.GetElapsedSeconds(),
	}, nil
}

// Stats aggregates results for one preset and player
type Stats struct {
	Games          int
	MinScore       int
	MaxScore       int
	MeanScore      float64
	MeanMismatches float64
	MeanElapsed    float64
}

func summarize(results []GameResult) Stats {
	if len(results) == 0 {
		return Stats{}
	}
	s := Stats{Games: len(results), MinScore: results[0].Score, MaxScore: results[0].Score}
	for _, r := range results {
		if r.Score < s.MinScore {
			s.MinScore = r.Score
		}
		if r.Score > s.MaxScore {
			s.MaxScore = r.Score
		}
		s.MeanScore += float64(r.Score)
		s.MeanMismatches += float64(r.Mismatches)
		s.MeanElapsed += float64(r.Elapsed)
	}
	n := float64(len(results))
	s.MeanScore /= n
	s.MeanMismatches /= n
	s.MeanElapsed /= n
	return s
}

// analyzeConfig simulates games for every player and writes a report
func analyzeConfig(w io.Writer, cfg *engine.GameConfig, games int, seed int64, thinkTime time.Duration) error {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", cfg.Name)
	fmt.Fprintf(w, "%s\n", cfg.Description)
	fmt.Fprintf(w, "Scoring: +%d / -%d, flip-back %dms, clock %v\n",
		cfg.MatchBonus, cfg.MismatchPenalty, cfg.FlipBackDelayMs, cfg.EnableClock)

	players := []Player{
		NewMemoryPlayer(rand.New(rand.NewSource(seed))),
		NewRandomPlayer(rand.New(rand.NewSource(seed))),
	}
	for _, player := range players {
		boards := rand.New(rand.NewSource(seed))
		results := make([]GameResult, 0, games)
		for i := 0; i < games; i++ {
			res, err := simulate(cfg, player, boards, thinkTime)
			if err != nil {
				return err
			}
			results = append(results, res)
		}

		s := summarize(results)
		fmt.Fprintf(w, "  %-7s score mean %.1f (min %d, max %d), mismatches %.1f",
			player.Name(), s.MeanScore, s.MinScore, s.MaxScore, s.MeanMismatches)
		if cfg.EnableClock {
			fmt.Fprintf(w, ", time %.1fs", s.MeanElapsed)
		}
		fmt.Fprintln(w)
		if s.MinScore < 0 {
			fmt.Fprintf(w, "  ⚠️  %s player can finish below zero\n", player.Name())
		}
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Simulate games against each preset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory with preset JSON files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 1000,
				Usage: "Games per preset and player",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "Random seed for boards and players",
			},
			&cli.DurationFlag{
				Name:  "think",
				Value: time.Second,
				Usage: "Virtual time before each click",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mgr, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}
			infos, err := mgr.ListConfigs()
			if err != nil {
				return err
			}
			for _, info := range infos {
				cfg, err := mgr.LoadConfig(info.ConfigID)
				if err != nil {
					return err
				}
				if err := analyzeConfig(os.Stdout, cfg, cmd.Int("games"), cmd.Int64("seed"), cmd.Duration("think")); err != nil {
					return err
				}
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}
