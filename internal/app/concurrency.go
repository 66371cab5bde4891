package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Both runs fa and fb concurrently and returns both results. The first
// failure cancels the other call's context and is returned unwrapped.
func Both[A, B any](
	ctx context.Context,
	fa func(context.Context) (A, error),
	fb func(context.Context) (B, error),
) (A, B, error) {
	var (
		a A
		b B
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = fa(ctx)
		return err
	})
	g.Go(func() (err error) {
		b, err = fb(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var (
			zeroA A
			zeroB B
		)

		return zeroA, zeroB, err
	}

	return a, b, nil
}

// Outcome is the result of one FanOut call.
type Outcome[T any] struct {
	Value T
	Err   error
}

// FanOut calls fn for every i in [0, n) with at most limit calls in
// flight and returns the outcomes in index order. One failure does not
// stop the others. Calls not yet started when ctx ends report ctx.Err().
// A non-positive limit runs all n at once.
func FanOut[T any](ctx context.Context, n, limit int, fn func(ctx context.Context, i int) (T, error)) []Outcome[T] {
	out := make([]Outcome[T], n)
	if limit <= 0 {
		limit = n
	}

	var g errgroup.Group
	g.SetLimit(max(limit, 1))

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}

			out[i].Value, out[i].Err = fn(ctx, i)

			return nil
		})
	}

	_ = g.Wait() // failures are reported per outcome

	return out
}
