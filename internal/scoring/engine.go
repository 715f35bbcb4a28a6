package scoring

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/jonathan/slopescout/internal/decision"
	"github.com/jonathan/slopescout/internal/types"
	"golang.org/x/sync/errgroup"
)

// Engine scores posts against the current snapshot. It is safe for concurrent use.
type Engine struct {
	snapshot atomic.Pointer[Snapshot]
	workers  int
}

// NewEngine creates an engine serving snap. workers bounds batch fan-out; values below 1
// use GOMAXPROCS.
func NewEngine(snap *Snapshot, workers int) *Engine {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	e := &Engine{workers: workers}
	e.snapshot.Store(snap)
	return e
}

// Snapshot returns the snapshot currently in use.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Swap replaces the snapshot atomically and returns the previous one. Evaluations already
// in flight finish against the snapshot they started with.
func (e *Engine) Swap(snap *Snapshot) *Snapshot {
	return e.snapshot.Swap(snap)
}

// Score evaluates a single post against the current snapshot.
func (e *Engine) Score(post types.Post) types.ScoreResult {
	return Evaluate(e.snapshot.Load(), post)
}

// ScoreBatch evaluates posts in parallel and returns results in input order. Every post
// in a batch sees the same snapshot. The only error is ctx cancellation.
func (e *Engine) ScoreBatch(ctx context.Context, posts []types.Post) ([]types.ScoreResult, error) {
	snap := e.snapshot.Load()
	results := make([]types.ScoreResult, len(posts))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range posts {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = Evaluate(snap, posts[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Evaluate is the pure scoring function: extract signals, decide, build the result.
func Evaluate(snap *Snapshot, post types.Post) types.ScoreResult {
	analysis := snap.Extractor.Analyze(post.Title, post.BodyText())
	outcome := decision.Decide(analysis, post, snap.Thresholds, snap.Drafting)

	return types.ScoreResult{
		ID:        post.ID,
		Score:     RoundScore(analysis.Score),
		Rationale: outcome.Rationale,
		Category:  outcome.Category,
		Draft:     outcome.Draft,
		RiskNotes: outcome.RiskNotes,
	}
}

// RoundScore rounds to two decimal places.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
