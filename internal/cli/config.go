package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/codalotl/textmerge/internal/lineclass"
	"github.com/codalotl/textmerge/internal/merge3"
	"github.com/codalotl/textmerge/internal/q/cascade"
)

// Config is textmerge's configuration loaded from a cascade of sources. Command-line flags override it.
type Config struct {
	Diff  DiffConfig  `json:"diff" toml:"diff"`
	Merge MergeConfig `json:"merge" toml:"merge"`
}

type DiffConfig struct {
	Context             int      `json:"context" toml:"context"`
	InterHunkContext    int      `json:"inter_hunk_context" toml:"inter_hunk_context"`
	FunctionNames       bool     `json:"function_names" toml:"function_names"`
	Minimal             bool     `json:"minimal" toml:"minimal"`
	Whitespace          []string `json:"whitespace" toml:"whitespace"` // any of "all", "change", "eol" (one at most), and "cr"
	IgnoreBlankLines    bool     `json:"ignore_blank_lines" toml:"ignore_blank_lines"`
	CompactionHeuristic bool     `json:"compaction_heuristic" toml:"compaction_heuristic"`
	Color               string   `json:"color" toml:"color"` // "auto", "always" or "never"
}

type MergeConfig struct {
	ConflictStyle string `json:"conflict_style" toml:"conflict_style"`
	MarkerSize    int    `json:"marker_size" toml:"marker_size"`
	Level         int    `json:"level" toml:"level"`
	Favor         string `json:"favor" toml:"favor"`
}

var configDefaults = map[string]any{
	"diff.context":              3,
	"diff.inter_hunk_context":   0,
	"diff.function_names":       false,
	"diff.minimal":              false,
	"diff.whitespace":           []string{},
	"diff.ignore_blank_lines":   false,
	"diff.compaction_heuristic": true,
	"diff.color":                "auto",
	"merge.conflict_style":      "merge",
	"merge.marker_size":         merge3.DefaultMarkerSize,
	"merge.level":               int(merge3.LevelZealousAlnum),
	"merge.favor":               "none",
}

// configEnv maps each config key to its environment variable, ex: "diff.context" -> "TEXTMERGE_DIFF_CONTEXT".
func configEnv() map[string]string {
	m := make(map[string]string, len(configDefaults))
	for key := range configDefaults {
		m[key] = "TEXTMERGE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	}
	return m
}

func loadConfig() (Config, cascade.LoadReport, error) {
	loader := cascade.New().
		WithDefaults(configDefaults).
		WithTOMLFile(cascade.InUserConfigDirectory(filepath.Join(".textmerge", "config.toml"))).
		WithJSONFile(cascade.InUserConfigDirectory(filepath.Join(".textmerge", "config.json"))).
		WithNearestFile("", filepath.Join(".textmerge", "config.toml"), filepath.Join(".textmerge", "config.json")).
		WithEnv(configEnv())

	var cfg Config
	report, err := loader.StrictlyLoadWithReport(&cfg)
	if err != nil {
		return Config{}, report, fmt.Errorf("load configuration: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return Config{}, report, err
	}
	return cfg, report, nil
}

func validateConfig(cfg Config) error {
	var problems []string
	if cfg.Diff.Context < 0 {
		problems = append(problems, fmt.Sprintf("diff.context must be >= 0 (got %d)", cfg.Diff.Context))
	}
	if cfg.Diff.InterHunkContext < 0 {
		problems = append(problems, fmt.Sprintf("diff.inter_hunk_context must be >= 0 (got %d)", cfg.Diff.InterHunkContext))
	}
	if _, err := parseWhitespace(cfg.Diff.Whitespace); err != nil {
		problems = append(problems, "diff.whitespace: "+err.Error())
	}
	switch cfg.Diff.Color {
	case "auto", "always", "never":
	default:
		problems = append(problems, fmt.Sprintf("diff.color must be auto, always or never (got %q)", cfg.Diff.Color))
	}
	if _, err := merge3.ParseStyle(cfg.Merge.ConflictStyle); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := merge3.ParseFavor(cfg.Merge.Favor); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.Merge.MarkerSize <= 0 {
		problems = append(problems, fmt.Sprintf("merge.marker_size must be > 0 (got %d)", cfg.Merge.MarkerSize))
	}
	if cfg.Merge.Level < int(merge3.LevelMinimal) || cfg.Merge.Level > int(merge3.LevelZealousAlnum) {
		problems = append(problems, fmt.Sprintf("merge.level must be 0-3 (got %d)", cfg.Merge.Level))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// parseWhitespace turns whitespace option names into a line policy. "all", "change" and "eol" are mutually exclusive; "cr" may be
// combined with any of them.
func parseWhitespace(names []string) (lineclass.Policy, error) {
	var p lineclass.Policy
	for _, name := range names {
		mode := lineclass.WhitespaceExact
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "all":
			mode = lineclass.WhitespaceIgnoreAll
		case "change":
			mode = lineclass.WhitespaceIgnoreChange
		case "eol":
			mode = lineclass.WhitespaceIgnoreAtEOL
		case "cr":
			p.IgnoreCRAtEOL = true
			continue
		case "", "exact":
			continue
		default:
			return lineclass.Policy{}, fmt.Errorf("unknown whitespace option %q", name)
		}
		if p.Whitespace != lineclass.WhitespaceExact && p.Whitespace != mode {
			return lineclass.Policy{}, fmt.Errorf("whitespace options %s and %s are mutually exclusive", p.Whitespace, mode)
		}
		p.Whitespace = mode
	}
	return p, nil
}

// writeConfig prints cfg as TOML followed by where each value came from.
func writeConfig(w io.Writer, cfg Config, report cascade.LoadReport) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("\n# Sources (low to high priority):\n")
	for _, p := range report.Sources {
		fmt.Fprintf(&b, "#   %s\n", p)
	}
	b.WriteString("#\n# Overrides:\n")
	overrides := 0
	for _, key := range report.SortedKeys() {
		if p := report.Keys[key]; !p.Default() {
			fmt.Fprintf(&b, "#   %s: %s\n", key, p)
			overrides++
		}
	}
	if overrides == 0 {
		b.WriteString("#   none\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
