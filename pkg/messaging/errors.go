package messaging

import "errors"

var (
	// ErrBusClosed is returned by operations attempted after Close, and
	// delivered to every request waiter still pending at close time.
	ErrBusClosed = errors.New("message bus is closed")

	// ErrRequestTimeout means no correlated response arrived within the
	// request's timeout. Distinct from context cancellation.
	ErrRequestTimeout = errors.New("request timed out waiting for response")

	// ErrDuplicateCorrelation means a request reused a correlation id
	// that already has a pending waiter. Exactly one waiter per
	// correlation id is a caller contract.
	ErrDuplicateCorrelation = errors.New("correlation id already has a pending request")

	// ErrNilHandler rejects a subscription without a handler.
	ErrNilHandler = errors.New("subscription handler is nil")

	// ErrEmptySubscriber rejects a subscription without an agent id.
	ErrEmptySubscriber = errors.New("subscriber agent id is empty")

	// ErrUnknownSubscription is returned when unsubscribing a token the
	// bus does not know.
	ErrUnknownSubscription = errors.New("unknown subscription token")
)
