// Package puzzle loads and validates the puzzle definitions that drive each
// game round.
//
// A puzzle file is either plain text or YAML. The text format holds the
// display string on the first line, the declared word count on the second
// line, and one valid word per remaining line:
//
//	CAT
//	2
//	meow
//	purr
//
// The YAML format carries the same fields:
//
//	display: CAT
//	count: 2
//	words: [meow, purr]
package puzzle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	// ErrNoPuzzles is returned when no valid puzzle definition is available.
	ErrNoPuzzles = errors.New("no puzzle definitions available")
	// ErrInvalidPuzzle is returned when a puzzle file is malformed or inconsistent.
	ErrInvalidPuzzle = errors.New("invalid puzzle definition")
)

// Definition is an immutable puzzle record.
type Definition struct {
	Name      string
	Display   string
	WordCount int
	Words     []string
}

// Validate checks that the declared word count matches the distinct words
// supplied and that the display string is present.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Display) == "" {
		return fmt.Errorf("%w: %s: empty display string", ErrInvalidPuzzle, d.Name)
	}
	if d.WordCount <= 0 {
		return fmt.Errorf("%w: %s: word count must be positive, got %d", ErrInvalidPuzzle, d.Name, d.WordCount)
	}

	seen := make(map[string]struct{}, len(d.Words))
	for _, w := range d.Words {
		if w == "" {
			return fmt.Errorf("%w: %s: empty word", ErrInvalidPuzzle, d.Name)
		}
		if _, dup := seen[w]; dup {
			return fmt.Errorf("%w: %s: duplicate word %q", ErrInvalidPuzzle, d.Name, w)
		}
		seen[w] = struct{}{}
	}

	if len(seen) != d.WordCount {
		return fmt.Errorf("%w: %s: declared %d words but found %d", ErrInvalidPuzzle, d.Name, d.WordCount, len(seen))
	}
	return nil
}

// Parse reads a text-format puzzle. Blank word lines are skipped and every
// line is trimmed of surrounding whitespace.
func Parse(name string, r io.Reader) (Definition, error) {
	def := Definition{Name: name}
	scanner := bufio.NewScanner(r)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return def, fmt.Errorf("read %s: %w", name, err)
	}

	if len(lines) < 2 {
		return def, fmt.Errorf("%w: %s: expected display string and word count", ErrInvalidPuzzle, name)
	}

	count, err := strconv.Atoi(lines[1])
	if err != nil {
		return def, fmt.Errorf("%w: %s: bad word count %q", ErrInvalidPuzzle, name, lines[1])
	}

	def.Display = lines[0]
	def.WordCount = count
	for _, line := range lines[2:] {
		if line == "" {
			continue
		}
		def.Words = append(def.Words, line)
	}

	return def, def.Validate()
}

type yamlDefinition struct {
	Display string   `yaml:"display"`
	Count   int      `yaml:"count"`
	Words   []string `yaml:"words"`
}

// ParseYAML decodes a YAML-format puzzle.
func ParseYAML(name string, data []byte) (Definition, error) {
	var raw yamlDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Definition{Name: name}, fmt.Errorf("%w: %s: %v", ErrInvalidPuzzle, name, err)
	}

	def := Definition{
		Name:      name,
		Display:   strings.TrimSpace(raw.Display),
		WordCount: raw.Count,
	}
	for _, w := range raw.Words {
		def.Words = append(def.Words, strings.TrimSpace(w))
	}

	return def, def.Validate()
}
