// ABOUTME: Resource entry type definitions
// ABOUTME: Defines content addresses, entry classes and typed payloads
package hx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hxtool/hxplay/pkg/audio"
	"golang.org/x/text/language"
)

// ID is the 64-bit content address of an entry
type ID uint64

func (id ID) String() string {
	return fmt.Sprintf("%016X", uint64(id))
}

// ParseID parses "0x"-prefixed or bare hexadecimal content addresses
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, fmt.Errorf("empty id")
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(v), nil
}

// Class tags the payload type of an entry
type Class int

const (
	ClassOther Class = iota
	ClassEvent
	ClassWaveResource
	ClassProgram
	ClassWaveFileObject
)

var classNames = map[Class]string{
	ClassOther:          "Other",
	ClassEvent:          "EventResourceData",
	ClassWaveResource:   "WaveResourceData",
	ClassProgram:        "ProgramResourceData",
	ClassWaveFileObject: "WaveFileIdObject",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ParseClass maps a stored class name to a Class; unknown names are ClassOther
func ParseClass(s string) Class {
	for c, name := range classNames {
		if strings.EqualFold(name, s) {
			return c
		}
	}
	return ClassOther
}

// Entry is an immutable resource entry owned by a Store
type Entry struct {
	ID         ID
	Class      Class
	ClassName  string // name as stored; informational for ClassOther
	FileOffset int64
	Data       any
}

// Name returns the display name of the entry: the event name, or the hex id
func (e *Entry) Name() string {
	if ev, ok := e.Event(); ok && ev.Name != "" {
		return ev.Name
	}
	return e.ID.String()
}

// TypeName returns the stored class name, falling back to the class tag
func (e *Entry) TypeName() string {
	if e.ClassName != "" {
		return e.ClassName
	}
	return e.Class.String()
}

func (e *Entry) Event() (*EventResourceData, bool) {
	if e == nil || e.Class != ClassEvent {
		return nil, false
	}
	d, ok := e.Data.(*EventResourceData)
	return d, ok
}

func (e *Entry) WaveResource() (*WaveResourceData, bool) {
	if e == nil || e.Class != ClassWaveResource {
		return nil, false
	}
	d, ok := e.Data.(*WaveResourceData)
	return d, ok
}

func (e *Entry) Program() (*ProgramResourceData, bool) {
	if e == nil || e.Class != ClassProgram {
		return nil, false
	}
	d, ok := e.Data.(*ProgramResourceData)
	return d, ok
}

func (e *Entry) WaveFile() (*WaveFileObject, bool) {
	if e == nil || e.Class != ClassWaveFileObject {
		return nil, false
	}
	d, ok := e.Data.(*WaveFileObject)
	return d, ok
}

// EventResourceData is a trigger entry referencing one playable target
type EventResourceData struct {
	Name         string
	Coefficients [4]float32
	Link         ID
}

// WaveLink is a localized variant of a wave resource
type WaveLink struct {
	ID       ID
	Language language.Tag
}

// WaveResourceData references one or more wave file objects
type WaveResourceData struct {
	Default ID
	Links   []WaveLink
}

// ProgramResourceData lists alternative wave resources in stored order
type ProgramResourceData struct {
	Links []ID
}

// ExternalRef locates samples inside an external bank file
type ExternalRef struct {
	Filename string
	Offset   int64
	Size     int64
}

// WaveFileObject owns sample data and format metadata
type WaveFileObject struct {
	Format      audio.Format
	SampleCount int
	Data        []byte
	External    *ExternalRef
}

// IsExternal reports whether samples live in an external bank file
func (w *WaveFileObject) IsExternal() bool {
	return w.External != nil && w.External.Size > 0
}

// Size returns the stream size in bytes
func (w *WaveFileObject) Size() int64 {
	if w.IsExternal() {
		return w.External.Size
	}
	return int64(len(w.Data))
}
