// Package workerpool runs independent per-item work with bounded concurrency.
package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Options bounds a Run.
type Options struct {
	// Concurrency caps the number of items processed at once. Values below 1 run
	// items one at a time.
	Concurrency int
	// ItemTimeout bounds each item. Zero disables the per-item deadline.
	ItemTimeout time.Duration
}

// PanicError wraps a panic recovered from an item.
type PanicError struct {
	Value any
	Stack string
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Run calls fn for every item. A failing, slow or panicking item never stops
// the others: item errors are collected and combined with multierr, and only
// cancellation of ctx ends the run early.
func Run[T any](ctx context.Context, items []T, opts Options, fn func(ctx context.Context, item T) error) error {
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	var (
		mu   sync.Mutex
		errs error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		item := item
		g.Go(func() error {
			if err := runItem(gctx, item, opts.ItemTimeout, fn); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func runItem[T any](ctx context.Context, item T, timeout time.Duration, fn func(context.Context, T) error) (err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return fn(ctx, item)
}
