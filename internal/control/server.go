// Package control exposes the engine to local tools over a websocket and a
// small JSON API.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/petems/armpaste/internal/autopaste"
	"github.com/petems/armpaste/internal/storage"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // bound to loopback
	},
}

// Controller is the part of the engine control clients drive
type Controller interface {
	Prepare(text string, images []image.Image)
	Arm()
	Disarm(reason string)
}

// History lists recorded cycles
type History interface {
	RecentCycles(limit int) ([]storage.Cycle, error)
}

// Server serves /ws, /api/status and /api/history
type Server struct {
	ctrl    Controller
	history History // may be nil
	addr    string
	hub     *Hub
	log     zerolog.Logger

	mu   sync.RWMutex
	last Message
}

func NewServer(ctrl Controller, history History, addr string, log zerolog.Logger) *Server {
	return &Server{
		ctrl:    ctrl,
		history: history,
		addr:    addr,
		hub:     NewHub(log),
		log:     log,
		last:    Message{Type: MessageDisarmed},
	}
}

// Handler returns the HTTP routes. The hub must be running, see Start.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/history", s.handleHistory)
	return mux
}

// Start runs the hub and listens until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.addr).Msg("Starting control server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("control server: %w", err)
	}
	return nil
}

// Publish records n as the current status and pushes it to every client
func (s *Server) Publish(n autopaste.Notification) {
	m := messageFor(n)

	s.mu.Lock()
	s.last = m
	s.mu.Unlock()

	s.broadcast(m)
}

func (s *Server) broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode control message")
		return
	}
	s.hub.Broadcast(data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		handle: s.handleRequest,
	}
	if !s.hub.add(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (s *Server) handleRequest(c *Client, data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.replyError(c, fmt.Errorf("invalid request: %w", err))
		return
	}

	switch req.Type {
	case RequestPrepare:
		images := make([]image.Image, 0, len(req.Images))
		for i, encoded := range req.Images {
			img, format, err := DecodeImage(encoded)
			if err != nil {
				s.replyError(c, fmt.Errorf("image %d: %w", i, err))
				return
			}
			s.log.Debug().Int("index", i).Str("format", format).Msg("Decoded control image")
			images = append(images, img)
		}
		s.ctrl.Prepare(req.Text, images)

	case RequestArm:
		s.ctrl.Arm()

	case RequestDisarm:
		reason := req.Reason
		if reason == "" {
			reason = autopaste.ReasonUser
		}
		s.ctrl.Disarm(reason)

	default:
		s.replyError(c, fmt.Errorf("unknown request type %q", req.Type))
	}
}

func (s *Server) replyError(c *Client, err error) {
	s.log.Warn().Err(err).Msg("Rejected control request")
	data, _ := json.Marshal(Message{Type: MessageError, Error: err.Error()})
	c.reply(data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(last)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		http.Error(w, "History disabled", http.StatusNotFound)
		return
	}

	limit := 50 // default
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	cycles, err := s.history.RecentCycles(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get cycles")
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}
	if cycles == nil {
		cycles = []storage.Cycle{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cycles": cycles,
		"limit":  limit,
	})
}
