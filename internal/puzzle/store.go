package puzzle

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Tyrowin/wordhunt/internal/logging"
)

// Store hands out uniformly random puzzle definitions. A Store built by
// NewStore re-scans its directory on every pick, so files added or removed
// while the server runs take effect at the next round. Parsed files are
// cached until their size or modification time changes. A Store is safe for
// concurrent use.
type Store struct {
	dir    string
	logger *logging.Logger

	mu      sync.RWMutex
	files   map[string]cachedFile
	puzzles []Definition
	pick    func(n int) int
}

type cachedFile struct {
	modTime time.Time
	size    int64
	def     Definition
	err     error
}

// NewStore loads every *.txt, *.yaml and *.yml file in dir. Files that fail
// to parse or validate are skipped with a warning. ErrNoPuzzles is returned
// when nothing valid remains.
func NewStore(dir string, logger *logging.Logger) (*Store, error) {
	s := &Store{dir: dir, logger: logger, pick: rand.Intn}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPuzzles, dir)
	}

	logger.Infof("Loaded %d puzzle definitions from %s", s.Len(), dir)
	return s, nil
}

// refresh re-reads the directory, parsing only new or changed files.
func (s *Store) refresh() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read puzzle directory %s: %w", s.dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files := make(map[string]cachedFile, len(entries))
	var puzzles []Definition
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".txt" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}

		cached, ok := s.files[name]
		if !ok || cached.size != info.Size() || !cached.modTime.Equal(info.ModTime()) {
			def, err := loadFile(filepath.Join(s.dir, name), ext)
			if err != nil {
				s.logger.Warnf("Skipping puzzle file %s: %v", name, err)
			}
			cached = cachedFile{modTime: info.ModTime(), size: info.Size(), def: def, err: err}
		}

		files[name] = cached
		if cached.err == nil {
			puzzles = append(puzzles, cached.def)
		}
	}

	s.files = files
	s.puzzles = puzzles
	return nil
}

// NewStatic builds a Store from in-memory definitions, validating each.
func NewStatic(defs ...Definition) (*Store, error) {
	if len(defs) == 0 {
		return nil, ErrNoPuzzles
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return &Store{puzzles: append([]Definition(nil), defs...), pick: rand.Intn}, nil
}

func loadFile(path, ext string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if ext == ".txt" {
		return Parse(name, bytes.NewReader(data))
	}
	return ParseYAML(name, data)
}

// SetPicker replaces the random index function. It must be called before the
// Store is shared between goroutines.
func (s *Store) SetPicker(pick func(n int) int) {
	s.pick = pick
}

// Random returns a uniformly chosen definition from the puzzles currently
// available.
func (s *Store) Random() (Definition, error) {
	if s == nil {
		return Definition{}, ErrNoPuzzles
	}
	if s.dir != "" {
		if err := s.refresh(); err != nil {
			return Definition{}, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.puzzles) == 0 {
		return Definition{}, ErrNoPuzzles
	}
	return s.puzzles[s.pick(len(s.puzzles))], nil
}

// Len reports how many definitions are loaded.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.puzzles)
}

// Names returns the sorted names of the loaded definitions.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.puzzles))
	for _, p := range s.puzzles {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
