// Package metrics exposes the process's prometheus metrics over HTTP, along with readiness and liveness endpoints
// for when the agent is deployed in k8s.
package metrics

import (
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
)

const (
	DefaultListenAddr = "localhost:2112"
	MetricsPath       = "/metrics"
	ReadyPath         = "/ready"
	LivePath          = "/live"
)

type Server struct {
	listenAddr string
	lock       sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	started    bool
	ready      common.AtomicBool
	live       common.AtomicBool
}

func NewServer(listenAddr string) *Server {
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}
	return &Server{listenAddr: listenAddr}
}

func (s *Server) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started {
		return errors.New("already started")
	}
	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return errors.NewInvalidConfigurationError(err.Error())
	}
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.Handler())
	mux.Handle(ReadyPath, &stateHandler{state: &s.ready})
	mux.Handle(LivePath, &stateHandler{state: &s.live})
	s.listener = listener
	s.httpServer = &http.Server{Handler: mux}
	s.started = true
	s.live.Set(true)
	go func(srv *http.Server, l net.Listener) {
		if err := srv.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Errorf("prometheus http export server failed %v", err)
		}
	}(s.httpServer, listener)
	log.Debugf("started prometheus http server on address %s", listener.Addr())
	return nil
}

// Addr is the address the server is listening on, or nil if it is not started.
func (s *Server) Addr() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.started {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.started {
		return errors.New("not started")
	}
	s.started = false
	s.live.Set(false)
	s.ready.Set(false)
	return errors.WithStack(s.httpServer.Close())
}

// SetReady controls whether the readiness endpoint reports the agent as able to take work.
func (s *Server) SetReady(ready bool) {
	s.ready.Set(ready)
}

type stateHandler struct {
	state *common.AtomicBool
}

func (h *stateHandler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	if h.state.Get() {
		writer.WriteHeader(http.StatusOK)
	} else {
		writer.WriteHeader(http.StatusServiceUnavailable)
	}
}
