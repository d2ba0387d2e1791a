package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"digital.vasic.lessons/pkg/lesson"
)

// VerifySolutions checks the authoring invariant that each lesson's
// reference solution passes its own assertions. Results are
// returned in the order of lessons. If ctx ends early, the
// lessons that were run are returned along with ctx's error.
func (r *DefaultRunner) VerifySolutions(
	ctx context.Context,
	lessons []*lesson.Lesson,
	maxConcurrency int,
) ([]*lesson.Result, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	ordered := make([]*lesson.Result, len(lessons))
	for i, l := range lessons {
		i, l := i, l
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ordered[i] = r.RunLesson(gctx, l, l.SolutionCode)
			return nil
		})
	}

	err := g.Wait()

	results := make([]*lesson.Result, 0, len(lessons))
	for _, res := range ordered {
		if res != nil {
			results = append(results, res)
		}
	}
	return results, err
}

// Failed returns the results whose status is not StatusPassed.
func Failed(results []*lesson.Result) []*lesson.Result {
	var out []*lesson.Result
	for _, res := range results {
		if res.Status != lesson.StatusPassed {
			out = append(out, res)
		}
	}
	return out
}
