// Package game holds the per-connection game state and the guess processing
// rules of a WordHunt round.
package game

import (
	"fmt"
	"sort"

	"github.com/Tyrowin/wordhunt/internal/logging"
	"github.com/Tyrowin/wordhunt/internal/puzzle"
)

// Response templates sent back to the client.
const (
	RoundCompleteMessage = "Congratulations! You found all words. Starting a new game..."
	correctFormat        = "Correct! Words remaining: %d"
	incorrectFormat      = "Incorrect! Words remaining: %d"
)

// PuzzleSource supplies a puzzle definition for each new round.
type PuzzleSource interface {
	Random() (puzzle.Definition, error)
}

// Session is the game state of one connected client. A Session is owned by a
// single connection goroutine and is not safe for concurrent use.
type Session struct {
	id        string
	source    PuzzleSource
	logger    *logging.Logger
	puzzle    string
	remaining map[string]struct{}
	rounds    int
}

// NewSession creates a Session and starts its first round.
func NewSession(id string, source PuzzleSource, logger *logging.Logger) (*Session, error) {
	s := &Session{
		id:     id,
		source: source,
		logger: logger,
	}
	if err := s.startRound(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) startRound() error {
	def, err := s.source.Random()
	if err != nil {
		return fmt.Errorf("start round for %s: %w", s.id, err)
	}

	s.puzzle = def.Display
	s.remaining = make(map[string]struct{}, len(def.Words))
	for _, w := range def.Words {
		s.remaining[w] = struct{}{}
	}
	s.rounds++

	s.logger.Infof("Game started for %s with puzzle %q. Words to find: %d", s.id, def.Name, len(s.remaining))
	return nil
}

// ProcessRequest applies one guess. Matching is exact and case-sensitive.
// When the last word of a round is found a new round starts and the returned
// error reports a failure to load its puzzle.
func (s *Session) ProcessRequest(guess string) (string, error) {
	if _, ok := s.remaining[guess]; !ok {
		return fmt.Sprintf(incorrectFormat, s.Remaining()), nil
	}

	delete(s.remaining, guess)
	if len(s.remaining) > 0 {
		return fmt.Sprintf(correctFormat, s.Remaining()), nil
	}

	if err := s.startRound(); err != nil {
		return "", err
	}
	return RoundCompleteMessage, nil
}

// ID returns the client identifier the session was created for.
func (s *Session) ID() string { return s.id }

// Puzzle returns the display string of the current round.
func (s *Session) Puzzle() string { return s.puzzle }

// Remaining returns how many words are still to be found this round.
func (s *Session) Remaining() int { return len(s.remaining) }

// Round returns the 1-based number of the current round.
func (s *Session) Round() int { return s.rounds }

// RemainingWords returns the words still to be found, sorted.
func (s *Session) RemainingWords() []string {
	words := make([]string, 0, len(s.remaining))
	for w := range s.remaining {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Greeting returns the "<puzzle>|<count>" line announcing the current round.
func (s *Session) Greeting() string {
	return fmt.Sprintf("%s|%d", s.puzzle, s.Remaining())
}

// NotifyShutdown records that the server is going away while this session is
// still active.
func (s *Session) NotifyShutdown() {
	s.logger.Infof("Notifying client %s of server shutdown.", s.id)
}
