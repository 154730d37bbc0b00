package puzzle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tyrowin/wordhunt/internal/logging"
	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	input := "CAT\r\n2\r\nmeow\r\n\r\npurr\r\n"

	def, err := Parse("cat", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}

	want := Definition{Name: "cat", Display: "CAT", WordCount: 2, Words: []string{"meow", "purr"}}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing count", "CAT\n"},
		{"non-numeric count", "CAT\ntwo\nmeow\npurr\n"},
		{"declared more than supplied", "CAT\n3\nmeow\npurr\n"},
		{"declared fewer than supplied", "CAT\n1\nmeow\npurr\n"},
		{"duplicate word", "CAT\n2\nmeow\nmeow\n"},
		{"empty display", "\n1\nmeow\n"},
		{"zero count", "CAT\n0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.name, strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidPuzzle) {
				t.Errorf("Expected ErrInvalidPuzzle, got %v", err)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte("display: DOG\ncount: 3\nwords:\n  - woof\n  - bark\n  - ' growl '\n")

	def, err := ParseYAML("dog", data)
	if err != nil {
		t.Fatalf("ParseYAML() returned error: %v", err)
	}

	want := Definition{Name: "dog", Display: "DOG", WordCount: 3, Words: []string{"woof", "bark", "growl"}}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Errorf("ParseYAML() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLCountMismatch(t *testing.T) {
	_, err := ParseYAML("dog", []byte("display: DOG\ncount: 5\nwords: [woof]\n"))
	if !errors.Is(err, ErrInvalidPuzzle) {
		t.Errorf("Expected ErrInvalidPuzzle, got %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestNewStoreLoadsValidFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cat.txt", "CAT\n2\nmeow\npurr\n")
	writeFile(t, dir, "dog.yaml", "display: DOG\ncount: 1\nwords: [woof]\n")
	writeFile(t, dir, "broken.txt", "BROKEN\n4\nonly\n")
	writeFile(t, dir, "notes.md", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	store, err := NewStore(dir, logging.Discard())
	if err != nil {
		t.Fatalf("NewStore() returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"cat", "dog"}, store.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 puzzles, got %d", store.Len())
	}
}

func TestNewStoreEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.txt", "nope\n")

	_, err := NewStore(dir, logging.Discard())
	if !errors.Is(err, ErrNoPuzzles) {
		t.Errorf("Expected ErrNoPuzzles, got %v", err)
	}
}

func TestNewStoreMissingDirectory(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing"), logging.Discard())
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestRandomUsesPicker(t *testing.T) {
	a := Definition{Name: "a", Display: "A", WordCount: 1, Words: []string{"x"}}
	b := Definition{Name: "b", Display: "B", WordCount: 1, Words: []string{"y"}}

	store, err := NewStatic(a, b)
	if err != nil {
		t.Fatalf("NewStatic() returned error: %v", err)
	}

	var seen []int
	store.SetPicker(func(n int) int {
		seen = append(seen, n)
		return 1
	})

	def, err := store.Random()
	if err != nil {
		t.Fatalf("Random() returned error: %v", err)
	}
	if def.Name != "b" {
		t.Errorf("Expected puzzle b, got %s", def.Name)
	}
	if diff := cmp.Diff([]int{2}, seen); diff != "" {
		t.Errorf("Picker called with unexpected bounds (-want +got):\n%s", diff)
	}
}

func TestRandomOnEmptyStore(t *testing.T) {
	var store *Store
	if _, err := store.Random(); !errors.Is(err, ErrNoPuzzles) {
		t.Errorf("Expected ErrNoPuzzles, got %v", err)
	}
	if _, err := NewStatic(); !errors.Is(err, ErrNoPuzzles) {
		t.Errorf("Expected ErrNoPuzzles from NewStatic(), got %v", err)
	}
}

func TestRandomPicksUpDirectoryChanges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cat.txt", "CAT\n2\nmeow\npurr\n")

	store, err := NewStore(dir, logging.Discard())
	if err != nil {
		t.Fatalf("NewStore() returned error: %v", err)
	}
	store.SetPicker(func(n int) int { return n - 1 })

	writeFile(t, dir, "zebra.yaml", "display: ZEBRA\ncount: 1\nwords: [stripes]\n")
	def, err := store.Random()
	if err != nil {
		t.Fatalf("Random() returned error: %v", err)
	}
	if def.Display != "ZEBRA" {
		t.Errorf("Expected newly added ZEBRA puzzle, got %s", def.Display)
	}

	if err := os.Remove(filepath.Join(dir, "zebra.yaml")); err != nil {
		t.Fatalf("Failed to remove puzzle: %v", err)
	}
	writeFile(t, dir, "cat.txt", "CAT\n9\nmeow\n")
	if _, err := store.Random(); !errors.Is(err, ErrNoPuzzles) {
		t.Errorf("Expected ErrNoPuzzles once no valid files remain, got %v", err)
	}

	writeFile(t, dir, "cat.txt", "CAT\n1\nhiss\n")
	def, err = store.Random()
	if err != nil {
		t.Fatalf("Random() returned error after fixing file: %v", err)
	}
	if diff := cmp.Diff([]string{"hiss"}, def.Words); diff != "" {
		t.Errorf("Expected reloaded words (-want +got):\n%s", diff)
	}
}
