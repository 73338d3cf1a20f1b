package service

import "go.uber.org/zap"

// result is the outcome of a read whose failure must not reach the caller
type result[T any] struct {
	value T
	err   error
}

func ok[T any](v T) result[T] { return result[T]{value: v} }

func failed[T any](err error) result[T] { return result[T]{err: err} }

// fromPtr turns a (pointer, error) pair into a result; a nil pointer is the zero value
func fromPtr[T any](v *T, err error) result[T] {
	if err != nil {
		return failed[T](err)
	}
	if v == nil {
		var zero T
		return ok(zero)
	}
	return ok(*v)
}

func (r result[T]) Failed() bool { return r.err != nil }

// OrZero returns the value, or logs the failure and returns the zero value
func (r result[T]) OrZero(logger *zap.Logger, msg string, fields ...zap.Field) T {
	if r.err != nil {
		logger.Error(msg, append(fields, zap.Error(r.err))...)
		var zero T
		return zero
	}
	return r.value
}
