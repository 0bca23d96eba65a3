package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"i4.energy/across/cellnet/netif"
)

// Server handles incoming HTTP requests for interacting with the
// connected cellular interface
type Server struct {
	Logger  *slog.Logger
	Gateway Gateway
	// Timeout bounds how long an exchange waits for the reply
	Timeout time.Duration

	router chi.Router
}

// NewServer creates a Server and its routes
func NewServer(logger *slog.Logger, gw Gateway, timeout time.Duration) *Server {
	s := &Server{Logger: logger, Gateway: gw, Timeout: timeout}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/exchange", s.handleExchange)
	s.router = r

	return s
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, ErrorResponse{Message: message}, statusCode)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("Failed to write response", "error", err)
	}
}

// handleHealth reports whether the interface holds an address
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type HealthResponse struct {
		Status string `json:"status"`
		IP     string `json:"ip,omitempty"`
	}

	ip := s.Gateway.IPAddress()
	if ip == "" {
		s.sendJSON(w, HealthResponse{Status: "disconnected"}, http.StatusServiceUnavailable)
		return
	}
	s.sendJSON(w, HealthResponse{Status: "ok", IP: ip}, http.StatusOK)
}

// handleStatus returns device, network and socket status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, newStatusResponse(s.Gateway), http.StatusOK)
}

// handleExchange sends a payload to a remote host and returns its reply
func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	type ExchangeRequest struct {
		Network string `json:"network"`
		Address string `json:"address"`
		Payload string `json:"payload"`
	}
	type ExchangeResponse struct {
		Reply string `json:"reply"`
		Bytes int    `json:"bytes"`
	}

	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Address == "" || req.Payload == "" {
		s.sendError(w, "both 'address' and 'payload' fields are required", http.StatusBadRequest)
		return
	}
	if req.Network == "" {
		req.Network = "tcp"
	}

	reply, err := exchange(r.Context(), s.Gateway, req.Network, req.Address, []byte(req.Payload), s.Timeout)
	if err != nil {
		s.Logger.Error("Exchange failed", "error", err, "network", req.Network, "address", req.Address)
		s.sendError(w, err.Error(), exchangeStatus(err))
		return
	}

	s.Logger.Info("Exchange completed", "network", req.Network, "address", req.Address,
		"sent", len(req.Payload), "received", len(reply))
	s.sendJSON(w, ExchangeResponse{Reply: string(reply), Bytes: len(reply)}, http.StatusOK)
}

func exchangeStatus(err error) int {
	switch netif.Code(err) {
	case netif.CodeParameter, netif.CodeUnsupported:
		return http.StatusBadRequest
	case netif.CodeNoSocket, netif.CodeNoConnection:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
