// Package results carries the outcome of a service operation.
//
// A service distinguishes business failures, which are part of normal flow and end up in Failure,
// from infrastructure errors, which are returned alongside the result as a plain error.
package results

// OperationResult holds exactly one of Success or Failure.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a successful value.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult wraps a business failure.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

// IsSuccess reports whether a success value is present.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether a failure value is present.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}

// Map converts the success value, passing failures through unchanged.
func Map[S any, T any, F any](r OperationResult[S, F], fn func(S) T) OperationResult[T, F] {
	switch {
	case r.Failure != nil:
		return OperationResult[T, F]{Failure: r.Failure}
	case r.Success != nil:
		return SuccessResult[T, F](fn(*r.Success))
	default:
		return OperationResult[T, F]{}
	}
}
