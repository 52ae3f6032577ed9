package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgloss/vocabulary"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "semgloss.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "semgloss version "+Version+" (build: "+BuildTime+")\n", out)
}

func TestProbeCommand_Args(t *testing.T) {
	out, err := execute(t, "", "probe", "ATO", "xyz")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ATO\tato\t"), lines[0])
	assert.Equal(t, "xyz\t-", lines[1])
}

func TestProbeCommand_StdinJSON(t *testing.T) {
	out, err := execute(t, "atc\n\n  mdi  \nnothing\n", "probe", "--json")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var matched []bool
	for dec.More() {
		var result struct {
			Candidate string `json:"candidate"`
			Matched   bool   `json:"matched"`
		}
		require.NoError(t, dec.Decode(&result))
		matched = append(matched, result.Matched)
	}
	assert.Equal(t, []bool{true, true, false}, matched)
}

func TestProbeCommand_ConfiguredVocabulary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terms.yaml"), []byte(`terms:
  sre:
    text: SRE
    brief: Site Reliability Engineering
`), 0644))
	cfgPath := filepath.Join(dir, "semgloss.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`vocabulary:
  paths: [terms.yaml]
  builtin: false
`), 0644))

	out, err := execute(t, "", "--config", cfgPath, "probe", "sre", "ATO")
	require.NoError(t, err)
	assert.Equal(t, "sre\tsre\tSite Reliability Engineering\nATO\t-\n", out)
}

func TestCompileCommand(t *testing.T) {
	out, err := execute(t, "", "compile")
	require.NoError(t, err)

	var report struct {
		Stats struct {
			Terms   int    `json:"terms"`
			BuildID string `json:"build_id"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, len(vocabulary.Builtin()), report.Stats.Terms)
	assert.NotEmpty(t, report.Stats.BuildID)
}

func TestCompileCommand_Dump(t *testing.T) {
	out, err := execute(t, "", "compile", "--dump")
	require.NoError(t, err)

	terms, err := vocabulary.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, vocabulary.Builtin(), terms)
}

func TestCompileCommand_BadConfig(t *testing.T) {
	cfgPath := writeConfig(t, "vocabulary:\n  malformed: explode\n")
	_, err := execute(t, "", "--config", cfgPath, "compile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("WARN").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("").String())
}

func TestInitCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, ".config", "semgloss", "config.yaml")

	out, err := execute(t, "", "init")
	require.NoError(t, err)
	assert.Equal(t, "created "+path+"\n", out)

	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err = execute(t, "", "init")
	require.NoError(t, err)
	assert.Equal(t, "exists "+path+"\n", out)
}
