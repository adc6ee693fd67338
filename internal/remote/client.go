// ABOUTME: Websocket client for a remote hxplay endpoint
// ABOUTME: Sends playback commands and routes status and log messages to channels
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hxtool/hxplay/internal/protocol"
)

// Client is a connection to a remote server
type Client struct {
	conn  *websocket.Conn
	hello protocol.Hello

	writeMu sync.Mutex
	mu      sync.Mutex
	closed  bool

	// Status and Logs receive server messages; slow readers drop messages
	Status chan protocol.Status
	Logs   chan protocol.LogEntry
	done   chan struct{}
}

// Dial connects to a ws:// URL and waits for the server hello
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	c := &Client{
		conn:   conn,
		Status: make(chan protocol.Status, 16),
		Logs:   make(chan protocol.LogEntry, 64),
		done:   make(chan struct{}),
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg protocol.Message
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})
	if msg.Type != protocol.TypeHello {
		conn.Close()
		return nil, fmt.Errorf("expected hello, got %s", msg.Type)
	}
	if err := msg.Decode(&c.hello); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readMessages()
	return c, nil
}

// Hello returns the server greeting
func (c *Client) Hello() protocol.Hello {
	return c.hello
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readMessages() {
	defer close(c.done)
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Failed to parse message: %v", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeStatus:
			var s protocol.Status
			if err := msg.Decode(&s); err == nil {
				select {
				case c.Status <- s:
				default:
				}
			}
		case protocol.TypeLog:
			var e protocol.LogEntry
			if err := msg.Decode(&e); err == nil {
				select {
				case c.Logs <- e:
				default:
				}
			}
		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

func (c *Client) command(msgType string, payload interface{}) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Play starts an event by name or hex id
func (c *Client) Play(entry string) error {
	return c.command(protocol.TypePlay, protocol.PlayCommand{Entry: entry})
}

func (c *Client) Stop() error   { return c.command(protocol.TypeStop, nil) }
func (c *Client) Pause() error  { return c.command(protocol.TypePause, nil) }
func (c *Client) Resume() error { return c.command(protocol.TypeResume, nil) }

func (c *Client) Repeat(on bool) error {
	return c.command(protocol.TypeRepeat, protocol.RepeatCommand{On: on})
}

func (c *Client) Volume(v float64) error {
	return c.command(protocol.TypeVolume, protocol.VolumeCommand{Volume: v})
}

// Send writes a raw command envelope
func (c *Client) Send(msg protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}
