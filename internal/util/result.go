package util

// Result holds either a value or an error from an operation whose failure
// should degrade rather than abort the caller. It replaces the pattern of
// smuggling errors through a shared value type.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err wraps a failure.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Wrap converts a conventional (value, error) pair into a Result.
func Wrap[T any](value T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(value)
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Err returns the wrapped error, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Value returns the wrapped value and error.
func (r Result[T]) Value() (T, error) {
	return r.value, r.err
}

// OrZero returns the value on success and the zero value on failure.
func (r Result[T]) OrZero() T {
	if r.err != nil {
		var zero T
		return zero
	}
	return r.value
}

// OrDefault returns the value on success and def on failure.
func (r Result[T]) OrDefault(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}
