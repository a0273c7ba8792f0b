// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package result provides a generic tri-state for asynchronously loaded values.

A [Result] is exactly one of [Loading], [Success] or [Failure]. The interface
is sealed, so a type switch over those three variants is exhaustive:

	switch state := cart.(type) {
	case result.Loading[[]Item]:
	case result.Success[[]Item]:
	    render(state.Data)
	case result.Failure[[]Item]:
	    showInline(state.Message)
	}
*/
package result

// Result is the sealed tri-state. Only this package can add variants.
//
// The marker takes T so that a Result[T] argument pins T for inference in
// calls such as Data(r).
type Result[T any] interface {
	isResult(T)
}

// Loading marks a value whose request is in flight.
type Loading[T any] struct{}

// Success carries the loaded value.
type Success[T any] struct {
	Data T
}

// Failure carries a user-facing message and, for logging, the error behind it.
type Failure[T any] struct {
	Message string
	Err     error
}

func (Loading[T]) isResult(T) {}
func (Success[T]) isResult(T) {}
func (Failure[T]) isResult(T) {}

// Ok wraps data in a [Success].
func Ok[T any](data T) Result[T] { return Success[T]{Data: data} }

// Pending returns a [Loading] state.
func Pending[T any]() Result[T] { return Loading[T]{} }

// Fail wraps err in a [Failure], using err's message.
func Fail[T any](err error) Result[T] {
	message := "Something went wrong"
	if err != nil {
		message = err.Error()
	}
	return Failure[T]{Message: message, Err: err}
}

// Match dispatches on the variant of r. A nil Result is treated as Loading.
func Match[T, U any](r Result[T], loading func() U, success func(T) U, failure func(string) U) U {
	switch state := r.(type) {
	case Success[T]:
		return success(state.Data)
	case Failure[T]:
		return failure(state.Message)
	default:
		return loading()
	}
}

// Data returns the payload of a [Success] and whether r was one.
func Data[T any](r Result[T]) (T, bool) {
	if state, ok := r.(Success[T]); ok {
		return state.Data, true
	}
	var zero T
	return zero, false
}

// IsLoading reports whether r is [Loading].
func IsLoading[T any](r Result[T]) bool {
	_, ok := r.(Loading[T])
	return ok
}

// Message returns the failure message of r, or "" for other variants.
func Message[T any](r Result[T]) string {
	if state, ok := r.(Failure[T]); ok {
		return state.Message
	}
	return ""
}

// Err returns the error behind a [Failure], or nil for other variants.
func Err[T any](r Result[T]) error {
	if state, ok := r.(Failure[T]); ok {
		return state.Err
	}
	return nil
}
