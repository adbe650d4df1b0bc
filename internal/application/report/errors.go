package report

import "errors"

var (
	// ErrInvalidInput marks caller mistakes such as a malformed window.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQueryFailure marks order store connection or query failures.
	ErrQueryFailure = errors.New("order store query failed")
)
