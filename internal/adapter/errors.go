package adapter

import "errors"

var (
	// ErrTransport means the request never produced a usable answer: network
	// error, timeout, or a server failure without a JSON body. The mutation
	// must be retried later.
	ErrTransport = errors.New("remote transport failure")

	// ErrProtocol means the remote answered with a body that is not JSON.
	ErrProtocol = errors.New("remote response is not json")

	// ErrUnrecognizedResponse means the body is JSON but not a known envelope.
	ErrUnrecognizedResponse = errors.New("unrecognized remote response")

	// ErrRejected means the remote answered with status "error".
	ErrRejected = errors.New("remote rejected the request")
)

// IsRetryable reports whether err leaves the request eligible for a later
// retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport)
}
