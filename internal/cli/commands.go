package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	qcli "github.com/codalotl/textmerge/internal/q/cli"
	"github.com/codalotl/textmerge/internal/q/cascade"
	"github.com/codalotl/textmerge/internal/simplelogger"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type configState struct {
	once   sync.Once
	cfg    Config
	report cascade.LoadReport
	err    error
}

func (s *configState) get() (Config, cascade.LoadReport, error) {
	s.once.Do(func() {
		s.cfg, s.report, s.err = loadConfig()
		if s.err == nil {
			simplelogger.Log("config loaded from %v", s.report.Sources)
		}
	})
	return s.cfg, s.report, s.err
}

func newRootCommand() *qcli.Command {
	cfgState := &configState{}

	// runWithConfig loads configuration before running next. A bad configuration fails the command with exit code 1.
	runWithConfig := func(event string, next func(c *qcli.Context, cfg Config) error) qcli.RunFunc {
		return func(c *qcli.Context) error {
			cfg, _, err := cfgState.get()
			if err != nil {
				simplelogger.Logger().Error("config", zap.String("command", event), zap.Error(err))
				return qcli.ExitError{Code: 1, Err: err}
			}
			return next(c, cfg)
		}
	}

	root := &qcli.Command{
		Name:  "textmerge",
		Short: "Line diffs, patches and three-way merges.",
	}

	versionCmd := &qcli.Command{
		Name:  "version",
		Short: "Print textmerge version.",
		Args:  qcli.NoArgs,
		Run: func(c *qcli.Context) error {
			return writeStringln(c.Out, Version)
		},
	}

	configCmd := &qcli.Command{
		Name:  "config",
		Short: "Print the effective configuration and where each value came from.",
		Args:  qcli.NoArgs,
		Run: runWithConfig("config", func(c *qcli.Context, cfg Config) error {
			_, report, _ := cfgState.get()
			return writeConfig(c.Out, cfg, report)
		}),
	}

	root.AddCommand(newDiffCommand(runWithConfig), newMergeCommand(runWithConfig), newApplyCommand(), configCmd, versionCmd)
	return root
}

type configuredRun func(event string, next func(c *qcli.Context, cfg Config) error) qcli.RunFunc

func writeStringln(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}

// readInput reads path, or all of in when path is "-".
func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

// writeFileKeepMode replaces path's contents, keeping its permissions.
func writeFileKeepMode(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}

// useColor resolves a color setting against out: "auto" colors only when out is a terminal.
func useColor(setting string, out io.Writer) bool {
	switch setting {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// countExitCode caps n to a valid process exit status.
func countExitCode(n int) int {
	return min(n, 127)
}

// stdinArgs counts the paths that name stdin.
func stdinArgs(paths ...string) int {
	n := 0
	for _, p := range paths {
		if p == "-" {
			n++
		}
	}
	return n
}
