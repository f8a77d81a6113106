package provider

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"
)

// IsCanceled reports whether err stems from the caller's context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsTransportError reports whether err was produced by the network layer
// rather than by the remote API.
func IsTransportError(err error) bool {
	if err == nil || IsCanceled(err) {
		return false
	}

	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
