package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ghosttype/ghosttype/pkg/logging"
)

// Server exposes a CommandHandler over loopback HTTP. One endpoint,
// POST /command, carrying a JSON Request and answering a JSON
// Response. The channel is unauthenticated and must only ever bind to
// a loopback address.
type Server struct {
	addr       string
	handler    CommandHandler
	log        *logging.Logger
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a control server for the given listen address.
func NewServer(addr string, handler CommandHandler, log *logging.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		log:     log,
	}
}

// Start binds the listener and begins serving in the background.
// The bind happens synchronously so address conflicts surface here.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("control server failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/command", s.handleCommand)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("control server error: %v", err)
		}
	}()

	s.log.Infof("control server listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound address, useful when the configured address
// used port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting for in-flight commands.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResponse(w, Response{Error: "malformed request"})
		return
	}

	s.log.Debugf("command received: %s", req.Action)
	resp := s.handler.Handle(req)
	s.writeResponse(w, resp)
}

func (s *Server) writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Errorf("failed to write response: %v", err)
	}
}
