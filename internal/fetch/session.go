package fetch

import (
	"net/http"
	"sync"
	"time"
)

// Session owns the HTTP transport shared by every monitoring loop. The
// Supervisor closes it exactly once, after all loops have stopped; an
// in-flight check may still be using the transport until then.
type Session struct {
	Client *http.Client

	closeOnce sync.Once
	transport *http.Transport
}

func NewSession(timeout time.Duration) *Session {
	tr := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Session{
		Client:    &http.Client{Transport: tr, Timeout: timeout},
		transport: tr,
	}
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.transport.CloseIdleConnections()
	})
	return nil
}
