package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"epitrello/internal/logs"
)

const writeTimeout = 10 * time.Second

// Transport is the websocket channel carrying push events. It authenticates
// with a bearer token at connect time and exposes join/leave room semantics
// keyed by board id. Events arrive on Events() in the order the server sent
// them; no reordering or batching happens here.
type Transport struct {
	conn   *websocket.Conn
	connID string
	events chan Event

	mu     sync.Mutex
	closed bool
}

// Dial connects and starts the read loop. The caller owns re-joining rooms
// if it reconnects with a fresh Transport.
func Dial(ctx context.Context, url, token string) (*Transport, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	connID := uuid.NewString()
	header.Set("X-Connection-ID", connID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	t := &Transport{
		conn:   conn,
		connID: connID,
		events: make(chan Event, 32),
	}
	go t.readLoop()
	return t, nil
}

// Events is the inbound event stream. It closes when the connection drops.
func (t *Transport) Events() <-chan Event { return t.events }

// JoinBoard subscribes this connection to a board room.
func (t *Transport) JoinBoard(boardID string) error {
	return t.send(map[string]string{"event": "board:join", "board": boardID})
}

// LeaveBoard unsubscribes from a board room.
func (t *Transport) LeaveBoard(boardID string) error {
	return t.send(map[string]string{"event": "board:leave", "board": boardID})
}

func (t *Transport) send(msg any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return websocket.ErrCloseSent
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

func (t *Transport) readLoop() {
	defer close(t.events)
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if !closed {
				logs.Warn().Err(err).Msg("socket read failed")
			}
			return
		}
		ev, err := Decode(data)
		if err != nil {
			logs.Warn().Err(err).Msg("skipping bad event frame")
			continue
		}
		t.events <- ev
	}
}
