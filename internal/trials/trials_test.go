package trials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "dm2_oral.md", "# Trial\r\n\r\nInclusion: adults.   \n\n\n\nExclusion: pregnancy.\n")

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dm2_oral", c.TrialID)
	assert.Equal(t, "# Trial\n\nInclusion: adults.\n\nExclusion: pregnancy.", c.Text)
}

func TestLoadFileEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "empty.md", "  \n\t\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
}

func TestLoadDirSkipsEmptyDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b_trial.md", "Inclusion: B.")
	writeDoc(t, dir, "a_trial.md", "Inclusion: A.")
	writeDoc(t, dir, "broken.md", "")

	loaded, skipped, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a_trial", loaded[0].TrialID)
	assert.Equal(t, "b_trial", loaded[1].TrialID)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], ErrEmptyDocument)
}

func TestLoadDirNoDocuments(t *testing.T) {
	_, _, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestLoadDirAllBroken(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "only.md", "\n")

	_, skipped, err := LoadDir(dir)
	require.Error(t, err)
	assert.Len(t, skipped, 1)
}
