// ABOUTME: Real-time mixing engine pulled by the audio device
// ABOUTME: Mixes the head stream into device buffers and handles repeat and end of queue
package playback

import (
	"math"
	"sync"

	"github.com/hxtool/hxplay/pkg/audio"
)

// DefaultVolume is the initial mix attenuation
const DefaultVolume = 0.5

// Engine is the output.Source of a playback session. Pull runs on the
// device's audio thread and only touches the queue under the engine lock.
type Engine struct {
	mu      sync.Mutex
	queue   Queue
	volume  float64
	repeat  bool
	active  bool
	session uint64
	cycles  int
	format  audio.Format
	drained chan uint64
}

// NewEngine creates an idle engine
func NewEngine() *Engine {
	return &Engine{
		volume:  DefaultVolume,
		drained: make(chan uint64, 1),
	}
}

// Drained delivers the session number of a queue that ran out with repeat
// off. The receiver is expected to close the device.
func (e *Engine) Drained() <-chan uint64 {
	return e.drained
}

// Pull fills buf with at most one buffer of the head stream. The unfilled
// tail is silence; continuation happens on the next call.
func (e *Engine) Pull(buf []byte) int {
	clear(buf)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return 0
	}

	q := &e.queue
	remaining := q.Remaining()
	if remaining <= 0 {
		if e.repeat && q.Length() > 0 {
			q.SwapForRepeat()
			e.cycles++
			return 0
		}
		e.finish()
		return 0
	}

	head := q.Current()
	if head == nil {
		// Counters claim data but nothing is pending
		e.finish()
		return 0
	}

	n := len(buf)
	if n > remaining {
		n = remaining
	}
	if left := head.Size() - q.Offset(); n > left {
		n = left
	}
	mix(buf[:n], head.Data[q.Offset():q.Offset()+n], e.volume)
	q.Advance(n)

	if q.Remaining() == 0 && e.repeat {
		q.SwapForRepeat()
		e.cycles++
	}
	return n
}

// finish clears the queue and signals the controller without blocking
func (e *Engine) finish() {
	e.queue.Clear()
	e.active = false
	select {
	case e.drained <- e.session:
	default:
	}
}

// mix adds src to dst attenuated by vol, saturating at the int16 range.
// A trailing odd byte is left silent.
func mix(dst, src []byte, vol float64) {
	for i := 0; i+1 < len(src); i += 2 {
		s := int32(float64(audio.Int16LE(src[i:])) * vol)
		d := int32(audio.Int16LE(dst[i:]))
		audio.PutInt16LE(dst[i:], audio.ClampInt16(d+s))
	}
}

// Load replaces the queue with streams and starts a new session. Streams
// that cannot be queued are returned with their errors.
func (e *Engine) Load(streams []*audio.Stream) (uint64, []error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.queue.Clear()
	var errs []error
	for _, s := range streams {
		if err := e.queue.Enqueue(s); err != nil {
			errs = append(errs, err)
		}
	}
	e.session++
	e.cycles = 0
	if len(streams) > 0 {
		e.format = streams[0].Format
	}
	e.active = e.queue.Len() > 0
	return e.session, errs
}

// Reset clears the queue and deactivates the engine
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue.Clear()
	e.active = false
	e.cycles = 0
}

// SetVolume sets the mix attenuation, clamped to [0,1]
func (e *Engine) SetVolume(v float64) {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
}

func (e *Engine) SetRepeat(on bool) {
	e.mu.Lock()
	e.repeat = on
	e.mu.Unlock()
}

// Status is a point-in-time copy of the engine counters
type Status struct {
	Active    bool
	Session   uint64
	Delivered int
	Length    int
	Index     int
	Count     int
	Offset    int
	HeadSize  int
	Cycles    int
	Repeat    bool
	Volume    float64
	Queue     []uint64
	Format    audio.Format
}

// Status snapshots the engine. It allocates and must not be called from
// the audio thread.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := &e.queue
	st := Status{
		Active:    e.active,
		Session:   e.session,
		Delivered: q.Delivered(),
		Length:    q.Length(),
		Index:     q.Index(),
		Count:     q.Len(),
		Offset:    q.Offset(),
		Cycles:    e.cycles,
		Repeat:    e.repeat,
		Volume:    e.volume,
		Format:    e.format,
	}
	if head := q.Current(); head != nil {
		st.HeadSize = head.Size()
	}
	for _, s := range q.Pending() {
		st.Queue = append(st.Queue, s.Source)
	}
	return st
}
