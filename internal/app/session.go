// ABOUTME: Application session orchestration
// ABOUTME: Owns the opened store, the external bank, the event log and the single playback session
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/hxtool/hxplay/internal/config"
	"github.com/hxtool/hxplay/pkg/audio/output"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/hxtool/hxplay/pkg/playback"
	"github.com/hxtool/hxplay/pkg/resolve"
)

// Session is one opened store with its player
type Session struct {
	path   string
	config config.Config
	log    *eventlog.Log
	player *playback.Player

	mu    sync.RWMutex
	store hx.Store
	bank  *hx.Bank

	listenersMu sync.Mutex
	listeners   []func(playback.State)
}

// Open loads the store at path and creates a player on dev.
// events may be nil to use a private log.
func Open(path string, cfg config.Config, dev output.Device, events *eventlog.Log) (*Session, error) {
	if events == nil {
		events = eventlog.New(cfg.Log.MaxEntries)
	}
	s := &Session{
		path:   path,
		config: cfg,
		log:    events,
	}

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	s.store = store
	s.bank = hx.NewBank(filepath.Dir(path), cfg.Bank.CacheTTL)

	pc := cfg.PlayerConfig()
	pc.OnStateChange = s.stateChanged
	s.player = playback.New(store, s.bank, dev, events, pc)
	return s, nil
}

// load opens the store file and logs the outcome
func (s *Session) load() (hx.Store, error) {
	begin := time.Now()
	store, err := hx.Open(s.path)
	if err != nil {
		s.log.Errorf("Failed to load file %s", s.path)
		return nil, fmt.Errorf("failed to load %s: %w", s.path, err)
	}
	s.log.Statusf("Loaded %s in %f seconds.", filepath.Base(s.path), time.Since(begin).Seconds())
	return store, nil
}

// Reload stops playback and reopens the store file. On failure the
// previous store stays active.
func (s *Session) Reload() error {
	if err := s.player.Stop(); err != nil {
		s.log.Warnf("Stop before reload failed: %v", err)
	}

	store, err := s.load()
	if err != nil {
		return err
	}
	bank := hx.NewBank(filepath.Dir(s.path), s.config.Bank.CacheTTL)
	// SetStore swaps even when closing the device fails
	if err := s.player.SetStore(store, bank); err != nil {
		s.log.Warnf("Stop before reload failed: %v", err)
	}

	s.mu.Lock()
	oldStore, oldBank := s.store, s.bank
	s.store, s.bank = store, bank
	s.mu.Unlock()

	oldStore.Close()
	oldBank.Close()
	return nil
}

// Path returns the store file path
func (s *Session) Path() string {
	return s.path
}

// Log returns the session event log
func (s *Session) Log() *eventlog.Log {
	return s.log
}

// Player returns the playback session
func (s *Session) Player() *playback.Player {
	return s.player
}

// Store returns the active store
func (s *Session) Store() hx.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Events lists the playable roots of the active store
func (s *Session) Events() []*hx.Entry {
	return resolve.Events(s.Store())
}

// Find looks up an entry by event name or hex id
func (s *Session) Find(ref string) (*hx.Entry, error) {
	return resolve.Find(s.Store(), ref)
}

// Lookup is Find returning only the id
func (s *Session) Lookup(ref string) (hx.ID, error) {
	e, err := s.Find(ref)
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

// Tree builds the resolution tree of an entry
func (s *Session) Tree(id hx.ID) *resolve.Node {
	return resolve.BuildTree(s.Store(), id, s.config.Resolve.MaxDepth)
}

// Play starts the entry named by ref
func (s *Session) Play(ctx context.Context, ref string) error {
	id, err := s.Lookup(ref)
	if err != nil {
		s.log.Errorf("%s: %v", ref, err)
		return err
	}
	return s.player.Play(ctx, id)
}

// OnStateChange registers fn to run after every player state transition.
// fn runs on the player's goroutine and must not block.
func (s *Session) OnStateChange(fn func(playback.State)) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

func (s *Session) stateChanged(state playback.State) {
	s.listenersMu.Lock()
	listeners := append([]func(playback.State){}, s.listeners...)
	s.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
}

// Close stops playback and releases the store
func (s *Session) Close() error {
	err := s.player.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	s.bank.Close()
	return err
}
