// Package option normalizes per-upload configuration values.
//
// A configured value is either a literal, a producer function returning the
// value, or a callback-style producer that reports the value through a
// completion function. Resolve turns any of them into a Producer so callers
// never care which shape was configured.
package option

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// ErrPanic is wrapped by the error a producer returns when the configured
// function panicked instead of returning.
var ErrPanic = errors.New("option: producer panicked")

// Producer yields the value of an option for one file.
type Producer[T any] func(ctx context.Context, file *s3types.File) (T, error)

// Option is a configured value of type T. Construct one with Static, Func
// or Callback.
type Option[T any] interface {
	producer() Producer[T]
}

// Static returns an Option that always yields v.
func Static[T any](v T) Option[T] {
	return staticOption[T]{value: v}
}

// Func returns an Option computed by fn for each file.
func Func[T any](fn func(ctx context.Context, file *s3types.File) (T, error)) Option[T] {
	return funcOption[T]{fn: fn}
}

// Callback returns an Option computed by fn, which reports the value or an
// error by calling done. Only the first call to done is observed; done may
// be called from any goroutine.
func Callback[T any](fn func(ctx context.Context, file *s3types.File, done func(T, error))) Option[T] {
	return callbackOption[T]{fn: fn}
}

// Resolve converts o into a Producer. A nil Option yields the zero value of T.
func Resolve[T any](o Option[T]) Producer[T] {
	if o == nil {
		var zero T
		return Static(zero).producer()
	}
	return o.producer()
}

type staticOption[T any] struct {
	value T
}

func (o staticOption[T]) producer() Producer[T] {
	v := o.value
	return func(context.Context, *s3types.File) (T, error) {
		return v, nil
	}
}

type funcOption[T any] struct {
	fn func(ctx context.Context, file *s3types.File) (T, error)
}

func (o funcOption[T]) producer() Producer[T] {
	return func(ctx context.Context, file *s3types.File) (v T, err error) {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				v, err = zero, fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		if v, err = o.fn(ctx, file); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	}
}

type callbackOption[T any] struct {
	fn func(ctx context.Context, file *s3types.File, done func(T, error))
}

type outcome[T any] struct {
	value T
	err   error
}

// unwrap drops the value of a failed completion.
func (r outcome[T]) unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

func (o callbackOption[T]) producer() Producer[T] {
	return func(ctx context.Context, file *s3types.File) (T, error) {
		results := make(chan outcome[T], 1)
		var once sync.Once
		done := func(v T, err error) {
			once.Do(func() { results <- outcome[T]{value: v, err: err} })
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					var zero T
					done(zero, fmt.Errorf("%w: %v", ErrPanic, r))
				}
			}()
			o.fn(ctx, file, done)
		}()

		// A synchronous completion wins over a context that is already done.
		select {
		case res := <-results:
			return res.unwrap()
		default:
		}

		select {
		case res := <-results:
			return res.unwrap()
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
