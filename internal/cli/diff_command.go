package cli

import (
	"fmt"
	"io"

	"github.com/codalotl/textmerge/internal/detectlang"
	"github.com/codalotl/textmerge/internal/diff"
	"github.com/codalotl/textmerge/internal/emit"
	qcli "github.com/codalotl/textmerge/internal/q/cli"
	"github.com/codalotl/textmerge/internal/simplelogger"
	"github.com/codalotl/textmerge/internal/xdiff"
	"go.uber.org/zap"
)

func newDiffCommand(runWithConfig configuredRun) *qcli.Command {
	cmd := &qcli.Command{
		Name:  "diff",
		Short: "Show a unified diff of two files.",
		Long: "Compares OLD and NEW line by line and prints a unified diff. Either may be \"-\" for stdin.\n" +
			"Exits 1 when the files differ and 0 when they do not.",
		Usage:   "OLD NEW",
		Example: "textmerge diff -U 5 --show-function old.go new.go",
		Args:    qcli.ExactArgs(2),
	}
	fs := cmd.Flags()
	context := fs.Int("unified", 'U', 0, "Lines of context (default: config diff.context).")
	interHunk := fs.Int("inter-hunk-context", 0, 0, "Join hunks separated by up to this many extra lines.")
	showFunc := fs.Bool("show-function", 'p', false, "Show the enclosing function in hunk headers.")
	funcContext := fs.Bool("function-context", 'W', false, "Show whole enclosing functions as context.")
	funcLang := fs.String("funcname", 0, "", "Function-line pattern: golang, python, cpp, rust, or a regexp list (default: by file extension).")
	minimal := fs.Bool("minimal", 0, false, "Spend extra time to find the smallest diff.")
	blank := fs.Bool("ignore-blank-lines", 'B', false, "Ignore changes whose lines are all blank.")
	color := fs.String("color", 0, "", "Color output: auto, always or never (default: config diff.color).")
	pretty := fs.Bool("pretty", 0, false, "Show a colorized line-and-span view instead of a patch.")
	ws := addWhitespaceFlags(fs)

	cmd.Run = runWithConfig("diff", func(c *qcli.Context, cfg Config) error {
		oldPath, newPath := c.Args[0], c.Args[1]
		if stdinArgs(oldPath, newPath) > 1 {
			return qcli.UsageError{Message: "at most one of OLD and NEW may be \"-\""}
		}

		policy, err := ws.policy(cfg.Diff.Whitespace)
		if err != nil {
			return qcli.UsageError{Message: err.Error()}
		}
		opts := xdiff.Options{
			Policy:              policy,
			NeedMinimal:         boolFlag(fs, "minimal", minimal, cfg.Diff.Minimal),
			IgnoreBlankLines:    boolFlag(fs, "ignore-blank-lines", blank, cfg.Diff.IgnoreBlankLines),
			CompactionHeuristic: cfg.Diff.CompactionHeuristic,
		}
		ecfg := emit.Config{
			Context:          intFlag(fs, "unified", context, cfg.Diff.Context),
			InterHunkContext: intFlag(fs, "inter-hunk-context", interHunk, cfg.Diff.InterHunkContext),
			FuncNames:        boolFlag(fs, "show-function", showFunc, cfg.Diff.FunctionNames),
			FuncContext:      *funcContext,
		}
		if ecfg.Context < 0 || ecfg.InterHunkContext < 0 {
			return qcli.UsageError{Message: "context sizes must not be negative"}
		}
		opts.TrimCommonTail = ecfg.Context == 0 && !ecfg.FuncContext
		lang := *funcLang
		if lang == "" && (ecfg.FuncNames || ecfg.FuncContext) {
			lang = detectlang.FuncPatternName(detectlang.FirstKnown(oldPath, newPath))
		}
		if lang != "" {
			if ecfg.FuncMatcher, err = funcMatcher(lang); err != nil {
				return qcli.UsageError{Message: err.Error()}
			}
		}

		oldData, err := readInput(c.In, oldPath)
		if err != nil {
			return err
		}
		newData, err := readInput(c.In, newPath)
		if err != nil {
			return err
		}

		colored := useColor(stringFlag(fs, "color", color, cfg.Diff.Color), c.Out)
		var hunks int
		if *pretty {
			hunks, err = writePretty(c.Out, oldData, newData, oldPath, newPath, ecfg.Context)
		} else {
			hunks, err = writeUnified(c.Out, oldData, newData, oldPath, newPath, opts, ecfg, colored)
		}
		simplelogger.Logger().Info("diff",
			zap.String("old", oldPath), zap.Int("old_bytes", len(oldData)),
			zap.String("new", newPath), zap.Int("new_bytes", len(newData)),
			zap.Int("hunks", hunks), zap.Error(err))
		if err != nil {
			return err
		}
		if hunks > 0 {
			return qcli.ExitError{Code: 1}
		}
		return nil
	})
	return cmd
}

// funcMatcher resolves a --funcname value: a builtin language name, or newline-separated patterns.
func funcMatcher(lang string) (emit.FuncMatcher, error) {
	pattern, ok := emit.BuiltinFuncPattern(lang)
	if !ok {
		pattern = lang
	}
	return emit.NewRegexpFuncMatcher(pattern, false)
}

func writeUnified(w io.Writer, oldData, newData []byte, oldName, newName string, opts xdiff.Options, ecfg emit.Config, color bool) (int, error) {
	env, script, err := xdiff.Diff(oldData, newData, opts)
	if err != nil {
		return 0, err
	}
	return emit.WriteUnified(w, env, script, ecfg, oldName, newName, color)
}

// writePretty renders the diff with diff.RenderPretty. It returns the number of changed regions.
func writePretty(w io.Writer, oldData, newData []byte, oldName, newName string, context int) (int, error) {
	d := diff.DiffText(string(oldData), string(newData))
	changes := 0
	for _, h := range d.Hunks {
		if h.Op != diff.OpEqual {
			changes++
		}
	}
	if changes == 0 {
		return 0, nil
	}
	_, err := fmt.Fprintln(w, d.RenderPretty(oldName, newName, context))
	return changes, err
}
