package trials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrEmptyDocument marks a criteria document that exists but carries no
// text. Callers must skip the trial rather than screen against nothing.
var ErrEmptyDocument = errors.New("trials: criteria document is empty")

// Criteria is one trial's inclusion/exclusion text, kept verbatim aside
// from whitespace normalization.
type Criteria struct {
	TrialID string
	Text    string
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// normalize cleans whitespace without touching the wording: CRLF to LF,
// trailing space stripped per line, runs of blank lines collapsed.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// LoadFile reads a single criteria document. The trial id is the file name
// without its extension.
func LoadFile(path string) (Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Criteria{}, fmt.Errorf("trials: read %s: %w", path, err)
	}
	text := normalize(string(data))
	if text == "" {
		return Criteria{}, fmt.Errorf("trials: %s: %w", path, ErrEmptyDocument)
	}
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))
	return Criteria{TrialID: id, Text: text}, nil
}

// LoadDir loads every .md document in dir, sorted by trial id. A directory
// with zero documents is an error: a screening run with no trials is a
// configuration mistake, not a no-op. A document that fails to load is
// returned in skipped so the caller can drop that trial for all patients
// instead of screening against empty criteria.
func LoadDir(dir string) (loaded []Criteria, skipped []error, err error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, nil, fmt.Errorf("trials: glob %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("trials: no criteria documents in %s", dir)
	}
	sort.Strings(paths)

	for _, p := range paths {
		c, loadErr := LoadFile(p)
		if loadErr != nil {
			skipped = append(skipped, loadErr)
			continue
		}
		loaded = append(loaded, c)
	}
	if len(loaded) == 0 {
		return nil, skipped, fmt.Errorf("trials: every criteria document in %s failed to load", dir)
	}
	return loaded, skipped, nil
}
