// Package remote talks to the one remote authority that decides whether a
// username/password pair is valid. The exchange is a single authenticated
// request against a fixed resource; only the response status code matters.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/icholy/digest"
)

// StatusAccepted is the only status code the authority answers for valid
// credentials. Anything else is a rejection.
const StatusAccepted = http.StatusNoContent

var ErrUnreachable = errors.New("remote authority unreachable")

type Authority struct {
	url       string
	timeout   time.Duration
	transport http.RoundTripper
}

// New returns an authority client for the fixed verification URL.
// timeout bounds the whole connect/send/receive exchange so a hung network
// cannot hang the logon surface.
func New(url string, timeout time.Duration) *Authority {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Authority{url: url, timeout: timeout, transport: http.DefaultTransport}
}

// SetTransport overrides the underlying transport (TLS options, tests).
func (a *Authority) SetTransport(rt http.RoundTripper) {
	if rt != nil {
		a.transport = rt
	}
}

// Check presents username/password as HTTP digest credentials on a bodyless
// request and returns the response status code. Transport, handshake and
// protocol failures wrap ErrUnreachable.
func (a *Authority) Check(ctx context.Context, username, password string) (int, error) {
	client := &http.Client{
		Transport: &digest.Transport{
			Transport: a.transport,
			Username:  username,
			Password:  password,
		},
		Timeout: a.timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	// Headers and body beyond the status line are not consumed.
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
