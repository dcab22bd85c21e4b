package cascade

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDiffConfig struct {
	Context          int      `json:"context"`
	InterHunkContext int      `json:"inter_hunk_context"`
	Minimal          bool     `json:"minimal"`
	Whitespace       []string `json:"whitespace"`
	Color            string   `json:"color"`
}

type testMergeConfig struct {
	Style      string `json:"conflict_style"`
	MarkerSize int    `json:"marker_size"`
}

type testConfig struct {
	Diff  testDiffConfig  `json:"diff"`
	Merge testMergeConfig `json:"merge"`
	Ratio float64         `cascade:"ratio"`
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStrictlyLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, filepath.Join(dir, "config.json"), `{"diff": {"context": 5, "color": "never"}, "ratio": 2.5}`)
	tomlPath := writeFile(t, filepath.Join(dir, "config.toml"), "[diff]\ncontext = 7\nwhitespace = [\"change\", \"eol\"]\n\n[merge]\nconflict_style = \"diff3\"\n")
	t.Setenv("TM_CONTEXT", "9")
	t.Setenv("TM_STYLE", "")

	var cfg testConfig
	report, err := New().
		WithDefaults(map[string]any{"diff.context": 3, "diff.inter_hunk_context": 0, "merge.conflict_style": "merge", "merge.marker_size": 7}).
		WithJSONFile(jsonPath).
		WithTOMLFile(tomlPath).
		WithEnv(map[string]string{"diff.context": "TM_CONTEXT", "merge.conflict_style": "TM_STYLE"}).
		StrictlyLoadWithReport(&cfg)
	require.NoError(t, err)

	assert.Equal(t, testConfig{
		Diff:  testDiffConfig{Context: 9, Whitespace: []string{"change", "eol"}, Color: "never"},
		Merge: testMergeConfig{Style: "diff3", MarkerSize: 7},
		Ratio: 2.5,
	}, cfg)

	assert.Equal(t, []Providence{
		{SourceType: SourceDefault},
		{SourceType: SourceJSONFile, SourceIdentifier: jsonPath},
		{SourceType: SourceTOMLFile, SourceIdentifier: tomlPath},
		{SourceType: SourceEnv},
	}, report.Sources)
	assert.Equal(t, Providence{SourceType: SourceEnv}, report.Keys["diff.context"])
	assert.Equal(t, Providence{SourceType: SourceJSONFile, SourceIdentifier: jsonPath}, report.Keys["diff.color"])
	assert.Equal(t, Providence{SourceType: SourceTOMLFile, SourceIdentifier: tomlPath}, report.Keys["merge.conflict_style"])
	assert.True(t, report.Keys["merge.marker_size"].Default())
	_, ok := report.Keys["diff.minimal"]
	assert.False(t, ok)
	assert.Equal(t, []string{"diff.color", "diff.context", "diff.inter_hunk_context", "diff.whitespace", "merge.conflict_style", "merge.marker_size", "ratio"}, report.SortedKeys())
}

func TestStrictlyLoad_Coercion(t *testing.T) {
	t.Setenv("TM_WS", "change, eol,")
	t.Setenv("TM_MINIMAL", "true")
	t.Setenv("TM_RATIO", "0.5")

	var cfg testConfig
	err := New().
		WithDefaults(map[string]any{"Diff.Context": "4", "merge": map[string]any{"MARKER_SIZE": 9.9}, "diff.color": true}).
		WithEnv(map[string]string{"diff.whitespace": "TM_WS", "diff.minimal": "TM_MINIMAL", "ratio": "TM_RATIO"}).
		StrictlyLoad(&cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Diff.Context)
	assert.Equal(t, 9, cfg.Merge.MarkerSize)
	assert.Equal(t, "true", cfg.Diff.Color)
	assert.Equal(t, []string{"change", "eol"}, cfg.Diff.Whitespace)
	assert.True(t, cfg.Diff.Minimal)
	assert.Equal(t, 0.5, cfg.Ratio)
}

func TestStrictlyLoad_MissingAndEmptyFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, filepath.Join(dir, "empty.toml"), "  \n")

	var cfg testConfig
	report, err := New().
		WithDefaults(map[string]any{"diff.context": 3}).
		WithJSONFile(filepath.Join(dir, "missing.json")).
		WithTOMLFile(empty).
		StrictlyLoadWithReport(&cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Diff.Context)
	assert.Len(t, report.Sources, 2)
}

func TestStrictlyLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("bad toml", func(t *testing.T) {
		path := writeFile(t, filepath.Join(dir, "bad.toml"), "[diff\ncontext = 1\n")
		var cfg testConfig
		err := New().WithTOMLFile(path).StrictlyLoad(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TOML File: "+path)
		assert.Contains(t, err.Error(), "parse toml")
	})

	t.Run("json not an object", func(t *testing.T) {
		path := writeFile(t, filepath.Join(dir, "arr.json"), `[1, 2]`)
		var cfg testConfig
		err := New().WithJSONFile(path).StrictlyLoad(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "top-level JSON must be an object")
	})

	t.Run("uncoercible value", func(t *testing.T) {
		t.Setenv("TM_CONTEXT", "lots")
		var cfg testConfig
		err := New().WithEnv(map[string]string{"diff.context": "TM_CONTEXT"}).StrictlyLoad(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ENV: diff.context: cannot parse int")
	})

	t.Run("object for scalar", func(t *testing.T) {
		var cfg testConfig
		err := New().WithDefaults(map[string]any{"diff": "x"}).StrictlyLoad(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected object")
	})

	t.Run("key conflict", func(t *testing.T) {
		var cfg testConfig
		err := New().WithDefaults(map[string]any{"diff": 1, "diff.context": 2}).StrictlyLoad(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key conflict")
	})

	t.Run("bad dest", func(t *testing.T) {
		var cfg testConfig
		assert.Error(t, New().StrictlyLoad(cfg))
		assert.Error(t, New().StrictlyLoad(nil))
		n := 3
		assert.Error(t, New().StrictlyLoad(&n))
	})
}

func TestStrictlyLoad_Required(t *testing.T) {
	type C struct {
		Name  string `cascade:",required"`
		Inner struct {
			Port int `cascade:"port,required"`
		}
	}

	var c C
	err := New().WithDefaults(map[string]any{"name": "x"}).StrictlyLoad(&c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required key: inner.port")

	err = New().WithDefaults(map[string]any{"name": "x", "inner.port": 80}).StrictlyLoad(&c)
	require.NoError(t, err)
	assert.Equal(t, 80, c.Inner.Port)
}

func TestWithNearestFile(t *testing.T) {
	base := t.TempDir()
	start := filepath.Join(base, "a", "b", "c")
	require.NoError(t, os.MkdirAll(start, 0o755))

	writeFile(t, filepath.Join(base, ".tm", "config.json"), `{"diff": {"context": 1}}`)
	tomlPath := writeFile(t, filepath.Join(base, "a", ".tm", "config.toml"), "[diff]\ncontext = 2\n")
	writeFile(t, filepath.Join(base, "a", "b", ".tm", "config.json"), "   ")

	var cfg testConfig
	report, err := New().WithNearestFile(start, ".tm/config.json", ".tm/config.toml").StrictlyLoadWithReport(&cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Diff.Context)
	assert.Equal(t, []Providence{{SourceType: SourceTOMLFile, SourceIdentifier: tomlPath}}, report.Sources)

	cfg = testConfig{}
	report, err = New().WithNearestFile(base, "nothing-here.json").StrictlyLoadWithReport(&cfg)
	require.NoError(t, err)
	assert.Empty(t, report.Sources)

	assert.Panics(t, func() { New().WithNearestFile(start, filepath.Join(base, "abs.json")) })
}

func TestProvidenceString(t *testing.T) {
	assert.Equal(t, "env", Providence{SourceType: SourceEnv}.String())
	assert.Equal(t, "toml_file /x/c.toml", Providence{SourceType: SourceTOMLFile, SourceIdentifier: "/x/c.toml"}.String())
}
