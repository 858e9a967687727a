// Package distribute provides concurrency primitives, like limited distribution of work.
package distribute

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

var ErrNotEnoughConcurrency = fmt.Errorf("concurrency must be greater than zero")

// OneToN distributes work to a limited number of worker functions.
// Items are produced by sourceFn and handed to concurrency workerFn functions.
// The context passed to both functions is canceled as soon as one of them fails,
// sourceFn must stop sending when this happens.
// Note that concurrency must be greater than zero.
func OneToN[T any](
	ctx context.Context,
	sourceFn func(ctx context.Context, dataCh chan<- T) error,
	workerFn func(ctx context.Context, data T) error,
	concurrency int,
) error {
	if concurrency < 1 {
		return ErrNotEnoughConcurrency
	}

	ch := make(chan T, concurrency)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(ch)
		return sourceFn(ctx, ch)
	})
	for i := 0; i < concurrency; i++ {
		eg.Go(func() error {
			for data := range ch {
				err := workerFn(ctx, data)
				if err != nil {
					return err
				}
			}

			return ctx.Err()
		})
	}

	return eg.Wait()
}

// Send puts data on ch unless ctx is done first.
func Send[T any](ctx context.Context, ch chan<- T, data T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ch <- data:
		return nil
	}
}
