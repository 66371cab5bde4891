// Package memo de-duplicates lookups within one request. Import workers
// share a Memo, so concurrent imports by the same author resolve (and
// create) its source once.
package memo

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

type ctxKey struct{}

// Memo caches successful fetches by key. Concurrent fetches of one key
// share a single call; failures are returned to every waiter and not
// cached.
type Memo struct {
	values sync.Map
	flight singleflight.Group
}

// Attach returns ctx carrying a Memo, reusing one that is already there.
func Attach(ctx context.Context) (context.Context, *Memo) {
	if m := From(ctx); m != nil {
		return ctx, m
	}

	m := &Memo{}

	return context.WithValue(ctx, ctxKey{}, m), m
}

// From returns the Memo carried by ctx, or nil.
func From(ctx context.Context) *Memo {
	m, _ := ctx.Value(ctxKey{}).(*Memo)
	return m
}

// Value returns what ctx's Memo holds under key, calling fetch on a miss.
// Without a Memo in ctx it simply calls fetch.
func Value[T any](ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	m := From(ctx)
	if m == nil {
		return fetch(ctx)
	}

	if v, ok := m.values.Load(key); ok {
		return as[T](key, v)
	}

	v, err, _ := m.flight.Do(key, func() (any, error) {
		// Filled between Load and Do by a flight that just landed.
		if v, ok := m.values.Load(key); ok {
			return v, nil
		}

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		m.values.Store(key, v)

		return v, nil
	})
	if err != nil {
		return zero, err
	}

	return as[T](key, v)
}

func as[T any](key string, v any) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("memo: key %q holds %T", key, v)
	}

	return typed, nil
}
