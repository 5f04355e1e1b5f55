package query

import (
	"context"
	"fmt"
	"time"
)

// Result is a typed Entry.
type Result[T any] struct {
	Data          T
	Err           error
	IsLoading     bool
	IsPlaceholder bool
	UpdatedAt     time.Time
}

// HasData reports whether Data holds a value from some response.
func (r Result[T]) HasData() bool {
	return (r.Err == nil && !r.UpdatedAt.IsZero()) || r.IsPlaceholder
}

// Resolve fetches key through c and converts the entry to Result[T].
func Resolve[T any](ctx context.Context, c *Cache, slot string, key Key, fn func(ctx context.Context) (T, error)) Result[T] {
	e := c.Fetch(ctx, slot, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	return typed[T](e)
}

// PeekAs is Peek converted to Result[T].
func PeekAs[T any](c *Cache, slot string, key Key) Result[T] {
	return typed[T](c.Peek(slot, key))
}

func typed[T any](e Entry) Result[T] {
	r := Result[T]{
		Err:           e.Err,
		IsLoading:     e.IsLoading,
		IsPlaceholder: e.IsPlaceholder,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.Data == nil {
		return r
	}
	data, ok := e.Data.(T)
	if !ok {
		if r.Err == nil {
			r.Err = fmt.Errorf("cached data is %T, not %T", e.Data, r.Data)
		}
		return r
	}
	r.Data = data
	return r
}
