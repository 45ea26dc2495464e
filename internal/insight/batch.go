package insight

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch runs the engine once per input with at most concurrency
// runs in flight. Reports are returned in input order. Cancelling ctx stops
// inputs that have not started yet and returns ctx's error.
func AnalyzeBatch(ctx context.Context, e *Engine, inputs []Input, concurrency int) ([]Report, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	reports := make([]Report, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = e.Run(inputs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
