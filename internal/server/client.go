// Package server runs the per-connection game protocol: greeting, guess
// loop, end-game confirmation, and unconditional cleanup.
package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/Tyrowin/wordhunt/internal/game"
	"github.com/google/uuid"
)

// Client is one connected player. It owns its game session exclusively.
type Client struct {
	id          string
	conn        transport
	server      *Server
	session     *game.Session
	rateLimiter *rateLimiter
}

func newClient(s *Server, conn transport) *Client {
	return &Client{
		id:          uuid.New().String(),
		conn:        conn,
		server:      s,
		rateLimiter: newRateLimiter(s.cfg.RateLimit),
	}
}

// serve runs the connection until the peer disconnects, confirms the end of
// the game, or fails. Cleanup runs exactly once on every path.
func (c *Client) serve() {
	defer c.cleanup()
	defer func() {
		if r := recover(); r != nil {
			c.server.logger.Errorf("Recovered from panic handling client %s: %v", c.id, r)
		}
	}()

	if err := c.start(); err != nil {
		if errors.Is(err, ErrServerClosed) || errors.Is(err, ErrServerFull) {
			c.server.logger.Warnf("Rejected client %s: %v", c.id, err)
			return
		}
		c.server.logger.Errorf("Error handling client %s: %v", c.id, err)
		return
	}

	if err := c.readLoop(); err != nil {
		c.logReadError(err)
	}
}

// start creates the session, registers it, and sends the greeting line.
func (c *Client) start() error {
	session, err := game.NewSession(c.id, c.server.puzzles, c.server.logger)
	if err != nil {
		return err
	}
	c.session = session

	reg := registration{session: session, conn: c.conn}
	if err := c.server.registry.add(c.id, reg, c.server.cfg.MaxConnections); err != nil {
		if errors.Is(err, ErrServerFull) {
			_ = c.conn.WriteLine(serverFullMessage)
		}
		return fmt.Errorf("register client: %w", err)
	}

	return c.send(session.Greeting())
}

// readLoop handles client lines until the connection ends. A nil return
// means the client left cleanly.
func (c *Client) readLoop() error {
	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			return err
		}

		message := strings.TrimSpace(line)
		c.server.logger.Infof("Received from %s: %s", c.id, message)

		if strings.EqualFold(message, endGameCommand) {
			confirmed, err := c.confirmEnd()
			if err != nil {
				return err
			}
			if confirmed {
				c.server.registry.Remove(c.id)
				c.server.logger.Infof("Client %s ended the game.", c.id)
				return nil
			}
			continue
		}

		if err := c.handleGuess(message); err != nil {
			return err
		}
	}
}

// confirmEnd asks the client to confirm ending the session.
func (c *Client) confirmEnd() (bool, error) {
	if err := c.send(confirmEndMessage); err != nil {
		return false, err
	}

	reply, err := c.conn.ReadLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(reply), confirmReply), nil
}

func (c *Client) handleGuess(guess string) error {
	if !c.rateLimiter.allow() {
		c.server.logger.Warnf("Rate limit exceeded for %s (%d guesses per %s); discarding guess",
			c.id, c.server.cfg.RateLimit.Burst, c.server.cfg.RateLimit.RefillInterval)
		return c.send(fmt.Sprintf(rateLimitedTemplate, c.session.Remaining()))
	}

	response, err := c.session.ProcessRequest(guess)
	if err != nil {
		return fmt.Errorf("process guess: %w", err)
	}
	if err := c.send(response); err != nil {
		return err
	}
	c.server.logger.Infof("Sent to %s: %s", c.id, response)

	if response == game.RoundCompleteMessage && c.server.cfg.AnnounceRounds {
		return c.send(c.session.Greeting())
	}
	return nil
}

func (c *Client) send(line string) error {
	if err := c.conn.WriteLine(line); err != nil {
		return fmt.Errorf("write to %s: %w", c.conn.RemoteAddr(), err)
	}
	return nil
}

// logReadError logs the reason a connection ended at a severity matching how
// unusual it is.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, io.EOF):
		return
	case errors.Is(err, errLineTooLong):
		c.server.logger.Warnf("Message from %s exceeded maximum size of %d bytes", c.id, c.server.cfg.MaxMessageSize)
	case isTimeout(err):
		c.server.logger.Infof("Client %s timed out after %s of inactivity", c.id, c.server.cfg.IdleTimeout)
	case isExpectedCloseError(err):
		c.server.logger.Infof("Client %s connection closed: %v", c.id, err)
	default:
		c.server.logger.Errorf("Error handling client %s: %v", c.id, err)
	}
}

// isTimeout matches read deadline errors from both transports. The WebSocket
// library rewraps them, so os.ErrDeadlineExceeded alone is not enough.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) cleanup() {
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.server.logger.Errorf("Error closing connection for %s: %v", c.id, err)
	}
	c.server.registry.Remove(c.id)
	c.server.logger.Infof("Client %s disconnected.", c.id)
}
