// ABOUTME: Stream queue for one playback session
// ABOUTME: Streams are consumed head-first and replayed in the same order on repeat
package playback

import (
	"fmt"

	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/hx"
)

// Queue holds the streams queued for playback. Streams before the head
// index have been played, the rest are pending. Advance and SwapForRepeat
// never allocate. Queue is not safe for concurrent use; Engine guards it.
type Queue struct {
	streams   []*audio.Stream
	head      int
	offset    int // into the head stream
	delivered int
	length    int
}

// Clear releases every stream and zeroes the counters
func (q *Queue) Clear() {
	clear(q.streams)
	q.streams = q.streams[:0]
	q.head = 0
	q.offset = 0
	q.delivered = 0
	q.length = 0
}

// Enqueue appends s to the pending streams
func (q *Queue) Enqueue(s *audio.Stream) error {
	if s.Size() == 0 {
		return fmt.Errorf("enqueue: empty stream: %w", hx.ErrLoad)
	}
	q.streams = append(q.streams, s)
	q.length += s.Size()
	return nil
}

// Current returns the head pending stream, or nil when none is pending
func (q *Queue) Current() *audio.Stream {
	if q.head >= len(q.streams) {
		return nil
	}
	return q.streams[q.head]
}

// Advance consumes n bytes of the head stream, moving it to the played set
// once exhausted. n is clamped to what is left of the head stream.
func (q *Queue) Advance(n int) {
	head := q.Current()
	if head == nil || n <= 0 {
		return
	}
	if left := head.Size() - q.offset; n > left {
		n = left
	}
	q.offset += n
	q.delivered += n
	if q.offset == head.Size() {
		q.head++
		q.offset = 0
	}
}

// SwapForRepeat makes every stream pending again in original order
func (q *Queue) SwapForRepeat() {
	q.head = 0
	q.offset = 0
	q.delivered = 0
}

// Remaining returns the bytes left in the current cycle
func (q *Queue) Remaining() int {
	return q.length - q.delivered
}

// Len returns the number of streams in the queue
func (q *Queue) Len() int {
	return len(q.streams)
}

// Index returns the position of the head stream
func (q *Queue) Index() int {
	return q.head
}

// Offset returns the read position inside the head stream
func (q *Queue) Offset() int {
	return q.offset
}

// Delivered returns the bytes consumed in the current cycle
func (q *Queue) Delivered() int {
	return q.delivered
}

// Length returns the total bytes queued
func (q *Queue) Length() int {
	return q.length
}

// Pending returns the streams not yet played, head first
func (q *Queue) Pending() []*audio.Stream {
	return q.streams[q.head:]
}

// Played returns the streams already played in this cycle
func (q *Queue) Played() []*audio.Stream {
	return q.streams[:q.head]
}
