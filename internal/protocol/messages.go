// ABOUTME: Remote control message type definitions
// ABOUTME: Defines the JSON envelope and payloads exchanged over the /hxplay websocket
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/playback"
)

// Server to client message types
const (
	TypeHello  = "hello"
	TypeStatus = "status"
	TypeLog    = "log"
)

// Client to server command types
const (
	TypePlay   = "play"
	TypeStop   = "stop"
	TypePause  = "pause"
	TypeResume = "resume"
	TypeRepeat = "repeat"
	TypeVolume = "volume"
)

// Message is the top-level wrapper for all messages
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into an envelope
func NewMessage(msgType string, payload interface{}) (Message, error) {
	msg := Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	msg.Payload = data
	return msg, nil
}

// Decode unmarshals the payload into v
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", m.Type, err)
	}
	return nil
}

// Hello is sent once after the connection is upgraded
type Hello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Store    string `json:"store,omitempty"`
}

// Status carries a player snapshot
type Status = playback.Snapshot

// LogEntry is the wire form of an event log entry
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// FromEntry converts an event log entry for the wire
func FromEntry(e eventlog.Entry) LogEntry {
	return LogEntry{Time: e.Time, Level: e.Level.String(), Message: e.Message}
}

// PlayCommand starts an event. Entry is an event name or hex id.
type PlayCommand struct {
	Entry string `json:"entry"`
}

type RepeatCommand struct {
	On bool `json:"on"`
}

type VolumeCommand struct {
	Volume float64 `json:"volume"`
}
