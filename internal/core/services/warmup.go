package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Warmup loads the model artifact and the predictions table concurrently and
// returns the first failure. Callers abort startup on error.
func Warmup(ctx context.Context, artifacts *ArtifactStore, predictions *PredictionCache) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := artifacts.Get(gctx)
		return err
	})
	g.Go(func() error {
		_, err := predictions.All(gctx)
		return err
	})
	return g.Wait()
}
