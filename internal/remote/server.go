// ABOUTME: Websocket remote control server
// ABOUTME: Streams player status and log entries to clients and executes their playback commands
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hxtool/hxplay/internal/discovery"
	"github.com/hxtool/hxplay/internal/protocol"
	"github.com/hxtool/hxplay/internal/version"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/hxtool/hxplay/pkg/playback"
)

// Path is the websocket endpoint
const Path = "/hxplay"

// Controller is the playback surface driven by remote commands
type Controller interface {
	Play(ctx context.Context, id hx.ID) error
	Stop() error
	Pause() error
	Resume() error
	SetRepeat(on bool)
	SetVolume(v float64)
	Snapshot() playback.Snapshot
}

// Lookup maps an event name or hex id to an entry id
type Lookup func(ref string) (hx.ID, error)

// Config holds server configuration
type Config struct {
	Addr      string
	Name      string
	Store     string
	Advertise bool

	// StatusInterval is the period of status broadcasts (default: 500ms)
	StatusInterval time.Duration
}

// Server is the remote control endpoint
type Server struct {
	config   Config
	serverID string
	ctrl     Controller
	lookup   Lookup
	events   *eventlog.Log

	upgrader websocket.Upgrader
	mux      *http.ServeMux

	clients   map[string]*client
	clientsMu sync.RWMutex

	changed chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

type client struct {
	id       string
	conn     *websocket.Conn
	sendChan chan protocol.Message
}

// New creates a server. events may be nil, in which case no log feed is sent.
func New(config Config, ctrl Controller, lookup Lookup, events *eventlog.Log) *Server {
	if config.StatusInterval <= 0 {
		config.StatusInterval = 500 * time.Millisecond
	}
	if config.Name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		config.Name = fmt.Sprintf("%s-%s", hostname, version.Product)
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		ctrl:     ctrl,
		lookup:   lookup,
		events:   events,
		upgrader: websocket.Upgrader{
			// Local network tool; non-browser clients send no Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:     http.NewServeMux(),
		clients: make(map[string]*client),
		changed: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.mux.HandleFunc(Path, s.handleWebSocket)

	s.wg.Add(1)
	go s.broadcast()
	return s
}

// Handler returns the HTTP handler serving the websocket endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Notify schedules an immediate status broadcast
func (s *Server) Notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// ListenAndServe serves until ctx is cancelled or Close is called
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	log.Printf("Remote listening on %s%s", ln.Addr(), Path)

	var mdnsManager *discovery.Manager
	if s.config.Advertise {
		_, portStr, _ := net.SplitHostPort(ln.Addr().String())
		port, _ := strconv.Atoi(portStr)
		mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        port,
			Path:        Path,
		})
		if err := mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
			mdnsManager = nil
		}
	}

	httpServer := &http.Server{Handler: s.mux}
	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
	case <-s.ctx.Done():
	case serverErr = <-errChan:
		log.Printf("HTTP server error: %v", serverErr)
	}

	if mdnsManager != nil {
		mdnsManager.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	s.Close()

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Close disconnects every client and stops broadcasting
func (s *Server) Close() {
	s.once.Do(func() {
		s.cancel()
		s.clientsMu.RLock()
		for _, c := range s.clients {
			c.conn.Close()
		}
		s.clientsMu.RUnlock()
		s.wg.Wait()
	})
}

// Clients returns the number of connected clients
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	log.Printf("New remote connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	c := &client{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan protocol.Message, 64),
	}

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()

	writerDone := make(chan struct{})
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		close(c.sendChan)
		s.clientsMu.Unlock()
		<-writerDone
		log.Printf("Remote client disconnected: %s", c.id)
	}()

	s.send(c, protocol.TypeHello, protocol.Hello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  version.Version,
		Store:    s.config.Store,
	})
	s.send(c, protocol.TypeStatus, s.ctrl.Snapshot())

	go func() {
		defer close(writerDone)
		s.clientWriter(c)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		s.handleClientMessage(c, data)
	}
}

// clientWriter owns all writes to the connection
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing message: %v", err)
				c.conn.Close()
				// drain so senders never block on a dead client
				for range c.sendChan {
				}
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				c.conn.Close()
				for range c.sendChan {
				}
				return
			}
		}
	}
}

func (s *Server) handleClientMessage(c *client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.reply(c, eventlog.Error, "Malformed message: %v", err)
		return
	}

	if err := s.execute(msg); err != nil {
		s.reply(c, eventlog.Error, "%v", err)
		return
	}
	s.Notify()
}

func (s *Server) execute(msg protocol.Message) error {
	switch msg.Type {
	case protocol.TypePlay:
		var cmd protocol.PlayCommand
		if err := msg.Decode(&cmd); err != nil {
			return err
		}
		id, err := s.lookup(cmd.Entry)
		if err != nil {
			return fmt.Errorf("play %s: %w", cmd.Entry, err)
		}
		return s.ctrl.Play(s.ctx, id)
	case protocol.TypeStop:
		return s.ctrl.Stop()
	case protocol.TypePause:
		return s.ctrl.Pause()
	case protocol.TypeResume:
		return s.ctrl.Resume()
	case protocol.TypeRepeat:
		var cmd protocol.RepeatCommand
		if err := msg.Decode(&cmd); err != nil {
			return err
		}
		s.ctrl.SetRepeat(cmd.On)
		return nil
	case protocol.TypeVolume:
		var cmd protocol.VolumeCommand
		if err := msg.Decode(&cmd); err != nil {
			return err
		}
		s.ctrl.SetVolume(cmd.Volume)
		return nil
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// reply sends a log entry to one client without recording it
func (s *Server) reply(c *client, level eventlog.Level, format string, args ...interface{}) {
	s.send(c, protocol.TypeLog, protocol.LogEntry{
		Time:    time.Now(),
		Level:   level.String(),
		Message: fmt.Sprintf(format, args...),
	})
}

// send queues a message without blocking; caller must not hold clientsMu for writing
func (s *Server) send(c *client, msgType string, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Printf("Error building %s message: %v", msgType, err)
		return
	}
	select {
	case c.sendChan <- msg:
	default:
		log.Printf("Remote client %s send buffer full, dropping %s", c.id, msgType)
	}
}

func (s *Server) sendAll(msgType string, payload interface{}) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		s.send(c, msgType, payload)
	}
}

// broadcast fans out log entries and status snapshots
func (s *Server) broadcast() {
	defer s.wg.Done()

	var entries <-chan eventlog.Entry
	if s.events != nil {
		ch, cancel := s.events.Subscribe(256)
		defer cancel()
		entries = ch
	}

	ticker := time.NewTicker(s.config.StatusInterval)
	defer ticker.Stop()

	var last playback.Snapshot
	for {
		select {
		case <-s.ctx.Done():
			return
		case e, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			s.sendAll(protocol.TypeLog, protocol.FromEntry(e))
		case <-ticker.C:
			last = s.ctrl.Snapshot()
			s.sendAll(protocol.TypeStatus, last)
		case <-s.changed:
			snap := s.ctrl.Snapshot()
			if !reflect.DeepEqual(snap, last) {
				last = snap
				s.sendAll(protocol.TypeStatus, snap)
			}
		}
	}
}
