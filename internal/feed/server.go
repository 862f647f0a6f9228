// Package feed streams propagation progress over WebSocket. A propagator
// publishes accepted steps and resolved events; any number of clients
// subscribe at /ws and receive them as JSON messages.
package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/propel/internal/traject"
)

const (
	maxClients      = 100
	maxEventHistory = 1000
	pingInterval    = 30 * time.Second
	pongWait        = 60 * time.Second
	writeWait       = 10 * time.Second
)

// StepUpdate is one accepted propagation step.
type StepUpdate struct {
	Time  float64   `json:"time"`
	State []float64 `json:"state"`
}

// EventUpdate is one resolved event.
type EventUpdate struct {
	Time       float64   `json:"time"`
	Detector   string    `json:"detector"`
	Increasing bool      `json:"increasing"`
	Action     string    `json:"action"`
	State      []float64 `json:"state"`
}

// Server broadcasts step and event updates to connected clients. Publishing
// never blocks; updates are dropped when the broadcast queue is full.
type Server struct {
	addr     string
	server   *http.Server
	upgrader websocket.Upgrader

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	steps  chan StepUpdate
	events chan EventUpdate
	stop   chan struct{}

	history []EventUpdate
	mu      sync.RWMutex

	once sync.Once
}

func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Browser clients must come from the local machine; non-browser
			// clients send no Origin and pass.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				host := u.Hostname()
				return host == "localhost" || host == "127.0.0.1"
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]bool),
		steps:   make(chan StepUpdate, 256),
		events:  make(chan EventUpdate, 100),
		stop:    make(chan struct{}),
	}
}

// Handler returns the HTTP handler and starts the broadcast loop.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() { go s.broadcast() })

	mux := http.NewServeMux()
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	log.Printf("event feed listening on %s", s.addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	close(s.stop)
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// OnStep publishes an accepted step; Server plugs into a propagator as an
// observer.
func (s *Server) OnStep(snap traject.Snapshot) {
	select {
	case s.steps <- StepUpdate{Time: snap.T, State: snap.X.Clone()}:
	default:
	}
}

// PublishEvent publishes a resolved event.
func (s *Server) PublishEvent(ev EventUpdate) {
	select {
	case s.events <- ev:
	default:
	}
}

// History returns the retained events, oldest first.
func (s *Server) History() []EventUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]EventUpdate, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.History())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.RLock()
	count := len(s.clients)
	s.clientsMu.RUnlock()
	if count >= maxClients {
		http.Error(w, "maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Read pump exists only to detect disconnects.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("websocket read error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		case <-s.stop:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Server) broadcast() {
	for {
		select {
		case step := <-s.steps:
			s.broadcastMessage(map[string]interface{}{
				"type": "step",
				"data": step,
			})
		case ev := <-s.events:
			s.mu.Lock()
			s.history = append(s.history, ev)
			if len(s.history) > maxEventHistory {
				copy(s.history, s.history[1:])
				s.history = s.history[:maxEventHistory]
			}
			s.mu.Unlock()

			s.broadcastMessage(map[string]interface{}{
				"type": "event",
				"data": ev,
			})
		case <-s.stop:
			return
		}
	}
}

func (s *Server) broadcastMessage(message interface{}) {
	s.clientsMu.RLock()
	if len(s.clients) == 0 {
		s.clientsMu.RUnlock()
		return
	}
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.clientsMu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("marshal broadcast message: %v", err)
		return
	}

	var failed []*websocket.Conn
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			c.Close()
			failed = append(failed, c)
		}
	}
	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, c := range failed {
			delete(s.clients, c)
		}
		s.clientsMu.Unlock()
	}
}
