package usecase

import "errors"

var (
	// ErrInvalidParams marks caller mistakes such as a missing currency.
	ErrInvalidParams = errors.New("invalid params")
	// ErrSourceUnavailable wraps backend failures. A failed fetch is never turned into a signal.
	ErrSourceUnavailable = errors.New("indicator source unavailable")
	// ErrMalformedSource marks backend indicator data the classifier rejected.
	ErrMalformedSource = errors.New("malformed indicator data from source")
	// ErrHistoryDisabled is returned when no ReportStore is configured.
	ErrHistoryDisabled = errors.New("report history disabled")
)
