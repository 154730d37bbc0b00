// Package testhelpers provides common utilities for testing the WordHunt server.
//
// It contains helpers for writing puzzle directories, dialing the game
// listener, and driving the line protocol over TCP or WebSocket with
// timeouts so a misbehaving server fails a test instead of hanging it.
package testhelpers

import (
	"bufio"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultTimeout bounds every read and write performed by the helpers.
const DefaultTimeout = 2 * time.Second

// TestOrigin is the Origin header sent by ConnectWebSocket.
const TestOrigin = "http://localhost:8080"

// WritePuzzleDir creates a temporary directory holding the given files,
// keyed by file name.
func WritePuzzleDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write puzzle file %s: %v", name, err)
		}
	}
	return dir
}

// GameClient is a line-oriented TCP test client.
type GameClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

// DialGame connects to the game listener at addr.
func DialGame(t *testing.T, addr string) *GameClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &GameClient{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

// Send writes one protocol line.
func (c *GameClient) Send(line string) {
	c.t.Helper()

	if err := c.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout)); err != nil {
		c.t.Fatalf("Failed to set write deadline: %v", err)
	}
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.t.Fatalf("Failed to send %q: %v", line, err)
	}
}

// ReadLine reads one protocol line, returning the error instead of failing
// so callers can assert on disconnects.
func (c *GameClient) ReadLine() (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(DefaultTimeout)); err != nil {
		return "", err
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Expect reads one line and fails the test unless it equals expected.
func (c *GameClient) Expect(expected string) {
	c.t.Helper()

	line, err := c.ReadLine()
	if err != nil {
		c.t.Fatalf("Expected %q, got error: %v", expected, err)
	}
	if line != expected {
		c.t.Fatalf("Expected %q, got %q", expected, line)
	}
}

// ExpectClosed fails the test unless the server closes the connection
// before sending any further line.
func (c *GameClient) ExpectClosed() {
	c.t.Helper()

	line, err := c.ReadLine()
	if err == nil {
		c.t.Fatalf("Expected connection to close, got %q", line)
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		c.t.Fatalf("Expected connection to close, read timed out")
	}
}

// Close closes the client side of the connection.
func (c *GameClient) Close() {
	_ = c.conn.Close()
}

// ConnectWebSocket creates a WebSocket connection to the specified URL with
// TestOrigin as its Origin header.
func ConnectWebSocket(url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	headers.Set("Origin", TestOrigin)

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// ReadWebSocketLine reads one text frame with DefaultTimeout.
func ReadWebSocketLine(conn *websocket.Conn) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(DefaultTimeout)); err != nil {
		return "", err
	}
	_, data, err := conn.ReadMessage()
	return string(data), err
}

// WaitFor polls cond until it is true or DefaultTimeout elapses.
func WaitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(DefaultTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}
