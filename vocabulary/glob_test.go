package vocabulary

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.yaml"), "terms:\n  ato:\n    text: ATO\n    brief: base\n  atc:\n    text: ATC\n")
	writeFile(t, filepath.Join(dir, "teams", "ops", "ops.yaml"), "terms:\n  ato:\n    text: ATO\n    brief: ops\n  tdy:\n    text: TDY\n")
	writeFile(t, filepath.Join(dir, "teams", "notes.txt"), "not a vocabulary")

	result, err := LoadGlob([]string{
		filepath.Join(dir, "base.yaml"),
		filepath.Join(dir, "teams", "**", "*.yaml"),
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, filepath.Join(dir, "base.yaml"), result.Files[0])
	assert.Equal(t, filepath.Join(dir, "teams", "ops", "ops.yaml"), result.Files[1])

	assert.Len(t, result.Terms, 3)
	assert.Equal(t, "ops", result.Terms["ato"].Brief, "later files win")
	require.Len(t, result.Overrides, 1)
	assert.Equal(t, Override{Key: "ato", File: result.Files[1]}, result.Overrides[0])
}

func TestLoadGlob_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "terms:\n  ato:\n    text: ATO\n")

	result, err := LoadGlob([]string{
		filepath.Join(dir, "*.yaml"),
		filepath.Join(dir, "a.yaml"),
	})
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)
	assert.Empty(t, result.Overrides)
}

func TestLoadGlob_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadGlob([]string{filepath.Join(dir, "*.yaml")})
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = LoadGlob([]string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)

	_, err = LoadGlob([]string{dir})
	assert.Error(t, err, "directories are not vocabulary files")

	writeFile(t, filepath.Join(dir, "bad.yaml"), "terms:\n  x:\n    type: slang\n")
	_, err = LoadGlob([]string{filepath.Join(dir, "bad.yaml")})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestWatchRoots(t *testing.T) {
	dir := t.TempDir()
	roots, err := WatchRoots([]string{
		filepath.Join(dir, "glossary", "**", "*.yaml"),
		filepath.Join(dir, "extra.yaml"),
		filepath.Join(dir, "glossary", "*.yml"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "glossary"), dir}, roots)
}

func TestMatchesAny(t *testing.T) {
	dir := t.TempDir()
	patterns := []string{
		filepath.Join(dir, "glossary", "**", "*.yaml"),
		filepath.Join(dir, "extra.yaml"),
	}

	assert.True(t, MatchesAny(patterns, filepath.Join(dir, "glossary", "a.yaml")))
	assert.True(t, MatchesAny(patterns, filepath.Join(dir, "glossary", "x", "y", "b.yaml")))
	assert.True(t, MatchesAny(patterns, filepath.Join(dir, "extra.yaml")))
	assert.False(t, MatchesAny(patterns, filepath.Join(dir, "glossary", "a.txt")))
	assert.False(t, MatchesAny(patterns, filepath.Join(dir, "other.yaml")))
}
