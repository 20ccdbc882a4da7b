package testutil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/instruction-server/pkg/netutil"
)

// Server provides a local HTTP server on a free port that can be used for
// testing handlers end to end with no external dependencies.
type Server struct {
	closeFunc sync.Once

	sync.Mutex
	serv       bool
	listener   net.Listener
	httpServer *http.Server
	baseUrl    string
}

// NewServer creates a new Server routing each path to its handler.
func NewServer(handlers map[string]http.HandlerFunc) (*Server, error) {
	port, err := netutil.GetAvailablePortForAddress("localhost")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find free port")
	}

	address := fmt.Sprintf("localhost:%d", port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start listener")
	}

	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		baseUrl: "http://" + address,
	}, nil
}

// URL returns the absolute URL for path on the server
func (s *Server) URL(path string) string {
	return s.baseUrl + path
}

// Serve asynchronously starts the server, provided it has not been previously
// started or stopped, and waits until readyPath answers. Callers should use
// stopFunc to stop the server in order to cleanup the underlying resources.
func (s *Server) Serve(readyPath string) (stopFunc func(), err error) {
	err = func() error {
		s.Lock()
		defer s.Unlock()

		if s.httpServer == nil {
			return errors.New("testserver already stopped")
		}

		if s.serv {
			return errors.New("testserver already started")
		}

		stopFunc = func() {
			s.closeFunc.Do(func() {
				s.Lock()
				defer s.Unlock()

				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()

				s.httpServer.Shutdown(ctx)
				s.httpServer = nil
				s.listener = nil
			})
		}

		lis := s.listener
		serv := s.httpServer
		go func() {
			err := serv.Serve(lis)
			logrus.
				StandardLogger().
				WithField("type", "testutil/server").
				WithError(err).
				Debug("stopped")
		}()

		s.serv = true
		return nil
	}()
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 100 * time.Millisecond}
	err = WaitFor(2500*time.Millisecond, 250*time.Millisecond, func() bool {
		resp, err := client.Get(s.URL(readyPath))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	})
	if err != nil {
		stopFunc()
		return nil, errors.Wrap(err, "error executing sanity test http call")
	}

	return stopFunc, nil
}
