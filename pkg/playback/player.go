// ABOUTME: Playback controller session
// ABOUTME: Resolves, converts and queues streams, then drives the audio device
package playback

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/audio/decode"
	"github.com/hxtool/hxplay/pkg/audio/output"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/hxtool/hxplay/pkg/resolve"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hxtool/hxplay/pkg/playback")

// State is the controller's playback state
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// Config holds player configuration
type Config struct {
	// Volume is the initial mix attenuation in [0,1] (default: 0.5)
	Volume float64

	// Repeat replays the queue when it runs out
	Repeat bool

	// SampleRate and Channels fix the session format; 0 takes the format
	// of the first resolved stream
	SampleRate int
	Channels   int

	// BufferMs is the preferred device callback period (default: 50)
	BufferMs int

	// Resolve tunes link resolution
	Resolve resolve.Options

	// OnStateChange is called after every state transition
	OnStateChange func(State)
}

// Snapshot describes the player for status displays
type Snapshot struct {
	State     string        `json:"state"`
	Session   string        `json:"session,omitempty"`
	Event     string        `json:"event,omitempty"`
	EventName string        `json:"event_name,omitempty"`
	Delivered int           `json:"delivered"`
	Length    int           `json:"length"`
	Index     int           `json:"index"`
	Count     int           `json:"count"`
	Progress  float64       `json:"progress"`
	Remaining time.Duration `json:"remaining"`
	Cycles    int           `json:"cycles"`
	Repeat    bool          `json:"repeat"`
	Volume    float64       `json:"volume"`
	Queue     []string      `json:"queue,omitempty"`
}

// Bytes renders the delivered counter as B:x/y
func (s Snapshot) Bytes() string {
	return fmt.Sprintf("B:%d/%d", s.Delivered, s.Length)
}

// Position renders the queue position as Q:i/n
func (s Snapshot) Position() string {
	return fmt.Sprintf("Q:%d/%d", s.Index, s.Count)
}

// Player is the single playback session of a process
type Player struct {
	config    Config
	engine    *Engine
	device    output.Device
	converter *decode.Converter
	log       eventlog.Logger

	mu        sync.Mutex
	store     hx.Store
	bank      *hx.Bank
	resolver  *resolve.Resolver
	state     State
	session   uint64
	sessionID string
	current   *hx.Entry
	last      hx.ID
	hasLast   bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a player over store. bank may be nil when the store has no
// external sample references.
func New(store hx.Store, bank *hx.Bank, dev output.Device, logger eventlog.Logger, config Config) *Player {
	if config.Volume == 0 {
		config.Volume = DefaultVolume
	}
	if config.BufferMs == 0 {
		config.BufferMs = 50
	}
	if logger == nil {
		logger = eventlog.Discard
	}

	engine := NewEngine()
	engine.SetVolume(config.Volume)
	engine.SetRepeat(config.Repeat)

	p := &Player{
		config:    config,
		engine:    engine,
		device:    dev,
		converter: decode.NewConverter(logger),
		log:       logger,
		store:     store,
		bank:      bank,
		resolver:  resolve.New(store, config.Resolve, logger),
		done:      make(chan struct{}),
	}

	p.wg.Add(1)
	go p.watchDrain()
	return p
}

// watchDrain closes the device when the engine runs out of data
func (p *Player) watchDrain() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case session := <-p.engine.Drained():
			p.mu.Lock()
			if session != p.session || p.state == Idle {
				p.mu.Unlock()
				continue
			}
			if err := p.device.Close(); err != nil {
				log.Printf("Error closing audio device: %v", err)
			}
			p.state = Idle
			p.current = nil
			p.mu.Unlock()
			p.notify(Idle)
		}
	}
}

// SetStore swaps the store after stopping playback
func (p *Player) SetStore(store hx.Store, bank *hx.Bank) error {
	err := p.Stop()

	p.mu.Lock()
	p.store = store
	p.bank = bank
	p.resolver = resolve.New(store, p.config.Resolve, p.log)
	p.hasLast = false
	p.mu.Unlock()
	return err
}

// Play resolves the event id and plays every stream it yields. Resolution
// gaps and conversion failures are logged; only resolver errors and device
// errors are returned.
func (p *Player) Play(ctx context.Context, id hx.ID) error {
	ctx, span := tracer.Start(ctx, "play")
	defer span.End()
	span.SetAttributes(attribute.String("entry.id", id.String()))

	p.mu.Lock()
	store, bank, resolver := p.store, p.bank, p.resolver
	p.mu.Unlock()

	entries, err := resolver.Resolve(ctx, id)
	if err != nil {
		p.log.Logf(eventlog.Error, "Failed to resolve %s: %v", id, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	event, _ := store.Entry(id)

	streams := p.prepare(ctx, entries, bank)
	span.SetAttributes(attribute.Int("streams", len(streams)))
	if len(streams) == 0 {
		p.log.Logf(eventlog.Warning, "%s: nothing to play", event.Name())
		return nil
	}

	p.mu.Lock()
	if store != p.store {
		p.mu.Unlock()
		return fmt.Errorf("store changed while loading %s", id)
	}
	if err := p.startLocked(event, streams); err != nil {
		p.mu.Unlock()
		span.SetStatus(codes.Error, err.Error())
		p.notify(Idle)
		return err
	}
	sessionID := p.sessionID
	p.mu.Unlock()

	span.SetAttributes(attribute.String("session", sessionID))
	p.notify(Playing)
	return nil
}

// prepare loads and converts every resolved wave file object, dropping
// the ones that fail
func (p *Player) prepare(ctx context.Context, entries []*hx.Entry, bank *hx.Bank) []*audio.Stream {
	_, span := tracer.Start(ctx, "prepare")
	defer span.End()

	loaded := make([]*audio.Stream, 0, len(entries))
	for _, e := range entries {
		s, err := hx.LoadStream(e, bank)
		if err != nil {
			p.log.Logf(eventlog.Error, "Failed to load %s: %v", e.ID, err)
			span.AddEvent("load failed", trace.WithAttributes(
				attribute.String("entry.id", e.ID.String()),
				attribute.String("error", err.Error()),
			))
			continue
		}
		loaded = append(loaded, s)
	}
	if len(loaded) == 0 {
		return nil
	}
	return p.converter.ConvertAll(loaded, p.target(loaded[0].Format))
}

// target picks the session format: configured, locked by the device, or
// taken from the first stream
func (p *Player) target(first audio.Format) audio.Format {
	rate, channels := first.SampleRate, first.Channels
	if locker, ok := p.device.(output.FormatLocker); ok {
		if spec, locked := locker.LockedSpec(); locked {
			rate, channels = spec.SampleRate, spec.Channels
		}
	}
	if p.config.SampleRate > 0 {
		rate = p.config.SampleRate
	}
	if p.config.Channels > 0 {
		channels = p.config.Channels
	}
	return audio.Canonical(rate, channels)
}

// startLocked replaces the current session with streams and opens the device
func (p *Player) startLocked(event *hx.Entry, streams []*audio.Stream) error {
	p.stopLocked()

	session, errs := p.engine.Load(streams)
	for _, err := range errs {
		p.log.Logf(eventlog.Error, "Failed to queue stream: %v", err)
	}
	p.session = session

	format := streams[0].Format
	spec := output.Spec{SampleRate: format.SampleRate, Channels: format.Channels}
	spec.BufferFrames = spec.BufferFor(time.Duration(p.config.BufferMs) * time.Millisecond)

	if err := p.device.Open(spec, p.engine); err != nil {
		p.engine.Reset()
		p.state = Idle
		p.log.Logf(eventlog.Error, "Failed to open audio device: %v", err)
		return fmt.Errorf("open %s: %v: %w", spec, err, hx.ErrDevice)
	}

	p.current = event
	p.last = event.ID
	p.hasLast = true
	p.sessionID = uuid.New().String()
	p.state = Playing
	p.log.Logf(eventlog.Status, "Playing %s (%d streams)", event.Name(), len(streams))
	return nil
}

// Toggle stops the event if it is the one playing, otherwise plays it
func (p *Player) Toggle(ctx context.Context, id hx.ID) error {
	p.mu.Lock()
	playing := p.state != Idle && p.current != nil && p.current.ID == id
	p.mu.Unlock()

	if playing {
		return p.Stop()
	}
	return p.Play(ctx, id)
}

// Replay plays the last played event again
func (p *Player) Replay(ctx context.Context) error {
	p.mu.Lock()
	id, ok := p.last, p.hasLast
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("nothing played yet: %w", hx.ErrNotFound)
	}
	return p.Play(ctx, id)
}

// Stop closes the device and clears the queue
func (p *Player) Stop() error {
	p.mu.Lock()
	wasIdle := p.state == Idle
	err := p.stopLocked()
	p.mu.Unlock()

	if !wasIdle {
		p.notify(Idle)
	}
	return err
}

func (p *Player) stopLocked() error {
	var err error
	if p.state != Idle {
		if cerr := p.device.Close(); cerr != nil {
			err = fmt.Errorf("close device: %v: %w", cerr, hx.ErrDevice)
		}
	}
	p.engine.Reset()
	p.current = nil
	p.state = Idle
	return err
}

// Pause mutes the device while keeping the queue
func (p *Player) Pause() error {
	return p.setPaused(true)
}

// Resume continues from the retained position
func (p *Player) Resume() error {
	return p.setPaused(false)
}

// TogglePause flips between Playing and Paused
func (p *Player) TogglePause() error {
	return p.setPaused(p.State() == Playing)
}

func (p *Player) setPaused(paused bool) error {
	p.mu.Lock()
	if p.state == Idle {
		p.mu.Unlock()
		return nil
	}
	if err := p.device.Pause(paused); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("pause: %v: %w", err, hx.ErrDevice)
	}
	next := Playing
	if paused {
		next = Paused
	}
	changed := p.state != next
	p.state = next
	p.mu.Unlock()

	if changed {
		p.notify(next)
	}
	return nil
}

func (p *Player) SetRepeat(on bool) {
	p.engine.SetRepeat(on)
}

// SetVolume sets the mix attenuation, clamped to [0,1]
func (p *Player) SetVolume(v float64) {
	p.engine.SetVolume(v)
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the event being played, if any
func (p *Player) Current() (*hx.Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.current != nil
}

// Snapshot reports the player state and queue counters
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	state, current, sessionID := p.state, p.current, p.sessionID
	p.mu.Unlock()

	st := p.engine.Status()
	snap := Snapshot{
		State:     state.String(),
		Delivered: st.Delivered,
		Length:    st.Length,
		Index:     st.Index,
		Count:     st.Count,
		Cycles:    st.Cycles,
		Repeat:    st.Repeat,
		Volume:    st.Volume,
	}
	if state == Idle {
		return snap
	}
	snap.Session = sessionID
	if current != nil {
		snap.Event = current.ID.String()
		snap.EventName = current.Name()
	}
	if st.HeadSize > 0 {
		snap.Progress = float64(st.Offset) / float64(st.HeadSize)
	}
	if bps := st.Format.Channels * st.Format.SampleRate * 2; bps > 0 {
		snap.Remaining = time.Duration(int64(st.Length-st.Delivered) * int64(time.Second) / int64(bps))
	}
	for _, src := range st.Queue {
		snap.Queue = append(snap.Queue, hx.ID(src).String())
	}
	return snap
}

// Close stops playback and the drain watcher
func (p *Player) Close() error {
	err := p.Stop()
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	p.wg.Wait()
	return err
}

func (p *Player) notify(s State) {
	if p.config.OnStateChange != nil {
		p.config.OnStateChange(s)
	}
}
