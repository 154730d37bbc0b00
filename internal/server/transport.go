// Package server adapts raw TCP connections to the line-oriented transport
// consumed by the connection handler.
package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	writeWait  = 10 * time.Second
	noticeWait = time.Second
)

var (
	// errLineTooLong is returned by ReadLine when a client line exceeds the
	// configured maximum message size.
	errLineTooLong = errors.New("message exceeds maximum size")

	// errNoticeSkipped is returned by Notify when another write is still in
	// flight on the connection.
	errNoticeSkipped = errors.New("notice skipped: write in progress")
)

// transport carries protocol lines for a single client. ReadLine returns
// io.EOF when the peer closes the connection. WriteLine and Close are safe to
// call from multiple goroutines and Close may be called more than once.
// Notify is a best-effort write bounded by noticeWait that gives up instead
// of waiting behind a blocked WriteLine.
type transport interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Notify(line string) error
	Close() error
	RemoteAddr() string
}

type tcpTransport struct {
	conn        net.Conn
	scanner     *bufio.Scanner
	idleTimeout time.Duration
	writeMu     sync.Mutex
	closeOnce   sync.Once
	closeErr    error
}

func newTCPTransport(conn net.Conn, cfg Config) *tcpTransport {
	// Room for the trailing "\r\n" on a maximum-length line. The scanner
	// treats the initial capacity as a floor for the limit, so it must not
	// exceed maxLine.
	maxLine := cfg.MaxMessageSize + 2
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(512, maxLine)), maxLine)

	return &tcpTransport{
		conn:        conn,
		scanner:     scanner,
		idleTimeout: cfg.IdleTimeout,
	}
}

func (t *tcpTransport) ReadLine() (string, error) {
	if t.idleTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.idleTimeout)); err != nil {
			return "", fmt.Errorf("set read deadline: %w", err)
		}
	}

	if t.scanner.Scan() {
		return t.scanner.Text(), nil
	}

	err := t.scanner.Err()
	if err == nil {
		return "", io.EOF
	}
	if errors.Is(err, bufio.ErrTooLong) {
		return "", errLineTooLong
	}
	return "", err
}

func (t *tcpTransport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	_, err := t.conn.Write([]byte(line + "\n"))
	return err
}

func (t *tcpTransport) Notify(line string) error {
	if !t.writeMu.TryLock() {
		return errNoticeSkipped
	}
	defer t.writeMu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(noticeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	_, err := t.conn.Write([]byte(line + "\n"))
	return err
}

func (t *tcpTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func (t *tcpTransport) RemoteAddr() string {
	if addr := t.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
