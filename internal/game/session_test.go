package game

import (
	"errors"
	"testing"

	"github.com/Tyrowin/wordhunt/internal/logging"
	"github.com/Tyrowin/wordhunt/internal/puzzle"
	"github.com/google/go-cmp/cmp"
)

// sequenceSource hands out definitions in order, repeating the last one.
type sequenceSource struct {
	defs  []puzzle.Definition
	calls int
	err   error
}

func (s *sequenceSource) Random() (puzzle.Definition, error) {
	if s.err != nil {
		return puzzle.Definition{}, s.err
	}
	i := s.calls
	if i >= len(s.defs) {
		i = len(s.defs) - 1
	}
	s.calls++
	return s.defs[i], nil
}

var (
	catPuzzle = puzzle.Definition{Name: "cat", Display: "CAT", WordCount: 2, Words: []string{"meow", "purr"}}
	dogPuzzle = puzzle.Definition{Name: "dog", Display: "DOG", WordCount: 3, Words: []string{"woof", "bark", "growl"}}
)

func newTestSession(t *testing.T, defs ...puzzle.Definition) (*Session, *sequenceSource) {
	t.Helper()
	src := &sequenceSource{defs: defs}
	s, err := NewSession("client-1", src, logging.Discard())
	if err != nil {
		t.Fatalf("NewSession() returned error: %v", err)
	}
	return s, src
}

func assertCountInvariant(t *testing.T, s *Session) {
	t.Helper()
	if got := len(s.RemainingWords()); got != s.Remaining() {
		t.Fatalf("Remaining() = %d but %d words remain", s.Remaining(), got)
	}
}

func TestNewSessionStartsRound(t *testing.T) {
	s, _ := newTestSession(t, catPuzzle)

	if s.Greeting() != "CAT|2" {
		t.Errorf("Expected greeting CAT|2, got %q", s.Greeting())
	}
	if s.Round() != 1 {
		t.Errorf("Expected round 1, got %d", s.Round())
	}
	if s.ID() != "client-1" {
		t.Errorf("Unexpected session id %q", s.ID())
	}
	assertCountInvariant(t, s)
}

func TestNewSessionWithoutPuzzles(t *testing.T) {
	src := &sequenceSource{err: puzzle.ErrNoPuzzles}

	_, err := NewSession("client-1", src, logging.Discard())
	if !errors.Is(err, puzzle.ErrNoPuzzles) {
		t.Errorf("Expected ErrNoPuzzles, got %v", err)
	}
}

func TestProcessRequestScenario(t *testing.T) {
	s, src := newTestSession(t, catPuzzle, dogPuzzle)

	steps := []struct {
		guess    string
		expected string
	}{
		{"meow", "Correct! Words remaining: 1"},
		{"meow", "Incorrect! Words remaining: 1"},
		{"PURR", "Incorrect! Words remaining: 1"},
		{"purr", RoundCompleteMessage},
	}

	for _, step := range steps {
		got, err := s.ProcessRequest(step.guess)
		if err != nil {
			t.Fatalf("ProcessRequest(%q) returned error: %v", step.guess, err)
		}
		if got != step.expected {
			t.Errorf("ProcessRequest(%q) = %q, expected %q", step.guess, got, step.expected)
		}
		assertCountInvariant(t, s)
	}

	if src.calls != 2 {
		t.Errorf("Expected exactly one reinitialization, source called %d times", src.calls)
	}
	if s.Greeting() != "DOG|3" {
		t.Errorf("Expected new round DOG|3, got %q", s.Greeting())
	}
	if s.Round() != 2 {
		t.Errorf("Expected round 2, got %d", s.Round())
	}
}

// TestAllWordsInAnyOrder verifies that guessing every word completes the
// round exactly once regardless of order.
func TestAllWordsInAnyOrder(t *testing.T) {
	orders := [][]string{
		{"woof", "bark", "growl"},
		{"growl", "woof", "bark"},
		{"bark", "growl", "woof"},
	}

	for _, order := range orders {
		s, src := newTestSession(t, dogPuzzle, catPuzzle)

		completions := 0
		for _, guess := range order {
			resp, err := s.ProcessRequest(guess)
			if err != nil {
				t.Fatalf("ProcessRequest(%q) returned error: %v", guess, err)
			}
			if resp == RoundCompleteMessage {
				completions++
			}
			assertCountInvariant(t, s)
		}

		if completions != 1 {
			t.Errorf("Order %v: expected 1 round completion, got %d", order, completions)
		}
		if src.calls != 2 {
			t.Errorf("Order %v: expected 2 rounds started, got %d", order, src.calls)
		}
	}
}

func TestIncorrectGuessDoesNotMutate(t *testing.T) {
	s, _ := newTestSession(t, dogPuzzle)
	before := s.RemainingWords()

	for _, guess := range []string{"", "meow", "Woof", " woof", "woof woof"} {
		resp, err := s.ProcessRequest(guess)
		if err != nil {
			t.Fatalf("ProcessRequest(%q) returned error: %v", guess, err)
		}
		if resp != "Incorrect! Words remaining: 3" {
			t.Errorf("ProcessRequest(%q) = %q", guess, resp)
		}
	}

	if diff := cmp.Diff(before, s.RemainingWords()); diff != "" {
		t.Errorf("Remaining words changed (-before +after):\n%s", diff)
	}
}

func TestRoundRestartFailure(t *testing.T) {
	s, src := newTestSession(t, catPuzzle)
	src.err = puzzle.ErrNoPuzzles

	if _, err := s.ProcessRequest("meow"); err != nil {
		t.Fatalf("Unexpected error before round end: %v", err)
	}
	if _, err := s.ProcessRequest("purr"); !errors.Is(err, puzzle.ErrNoPuzzles) {
		t.Errorf("Expected ErrNoPuzzles on round restart, got %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	a, _ := newTestSession(t, catPuzzle)
	b, _ := newTestSession(t, catPuzzle)

	if _, err := a.ProcessRequest("meow"); err != nil {
		t.Fatalf("ProcessRequest returned error: %v", err)
	}

	if a.Remaining() != 1 || b.Remaining() != 2 {
		t.Errorf("Expected isolated counts 1 and 2, got %d and %d", a.Remaining(), b.Remaining())
	}
}
