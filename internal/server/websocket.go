// Package server adapts WebSocket connections to the line transport so
// browser clients play the same protocol as raw TCP clients. Each text frame
// carries one protocol line.
package server

import (
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Tyrowin/wordhunt/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

type wsTransport struct {
	conn      *websocket.Conn
	addr      string
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
	logger    *logging.Logger

	// idleTimeout bounds the wait for the next client message. Pongs keep
	// the connection alive but never extend past idleDeadline.
	idleTimeout  time.Duration
	idleDeadline time.Time
}

func newWSTransport(conn *websocket.Conn, addr string, s *Server) *wsTransport {
	conn.SetReadLimit(int64(s.cfg.MaxMessageSize))

	t := &wsTransport{
		conn:        conn,
		addr:        addr,
		done:        make(chan struct{}),
		logger:      s.logger,
		idleTimeout: s.cfg.IdleTimeout,
	}
	t.setupReadConnection()
	go t.pingLoop()
	return t
}

// setupReadConnection configures read deadlines and pong handler for the WebSocket connection
func (t *wsTransport) setupReadConnection() {
	if err := t.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		t.logger.Warnf("Error setting initial read deadline for %s: %v", t.addr, err)
	}
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(t.readDeadline())
	})
}

// readDeadline is the pong deadline capped by the idle deadline, if any.
func (t *wsTransport) readDeadline() time.Time {
	deadline := time.Now().Add(pongWait)
	if !t.idleDeadline.IsZero() && t.idleDeadline.Before(deadline) {
		return t.idleDeadline
	}
	return deadline
}

func (t *wsTransport) ReadLine() (string, error) {
	if t.idleTimeout > 0 {
		t.idleDeadline = time.Now().Add(t.idleTimeout)
	}
	if err := t.conn.SetReadDeadline(t.readDeadline()); err != nil {
		return "", err
	}

	_, data, err := t.conn.ReadMessage()
	if err != nil {
		if errors.Is(err, websocket.ErrReadLimit) {
			return "", errLineTooLong
		}
		if websocket.IsCloseError(err,
			websocket.CloseNormalClosure,
			websocket.CloseGoingAway,
			websocket.CloseNoStatusReceived) {
			return "", io.EOF
		}
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (t *wsTransport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (t *wsTransport) Notify(line string) error {
	if !t.writeMu.TryLock() {
		return errNoticeSkipped
	}
	defer t.writeMu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(noticeWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

// pingLoop keeps the connection alive until Close is called.
func (t *wsTransport) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			if err := t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if !isExpectedCloseError(err) {
					t.logger.Warnf("Error writing ping message to %s: %v", t.addr, err)
				}
				return
			}
		}
	}
}

func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(noticeWait))
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func (t *wsTransport) RemoteAddr() string {
	return t.addr
}
