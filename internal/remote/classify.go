package remote

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/avetrovs/vitrine/internal/common"
)

// ClassifyError maps a transport failure onto the connectivity error
// taxonomy:
//
//   - common.ErrTimeout: the deadline expired before the remote answered
//   - common.ErrNetworkUnreachable: dial, DNS or connection failures
//   - common.ErrRemoteUnavailable: the process answered, but with a non-2xx
//     status or a malformed payload
//
// A nil error maps to nil.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return common.ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return common.ErrTimeout
	}

	var se *StatusError
	if errors.As(err, &se) {
		return common.ErrRemoteUnavailable
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return common.ErrNetworkUnreachable
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return common.ErrNetworkUnreachable
	}

	return common.ErrRemoteUnavailable
}
