package cli

import (
	"errors"
	"fmt"

	"github.com/codalotl/textmerge/internal/merge3"
	qcli "github.com/codalotl/textmerge/internal/q/cli"
	"github.com/codalotl/textmerge/internal/simplelogger"
	"github.com/codalotl/textmerge/internal/xdiff"
	"go.uber.org/zap"
)

func newMergeCommand(runWithConfig configuredRun) *qcli.Command {
	cmd := &qcli.Command{
		Name:  "merge",
		Short: "Three-way merge two files against their common ancestor.",
		Long: "Incorporates the changes from BASE to OTHER into CURRENT. The result replaces CURRENT unless --stdout is given.\n" +
			"Conflicts are written with markers. Exits with the number of conflicts (capped at 127).",
		Usage:   "CURRENT BASE OTHER",
		Example: "textmerge merge --style diff3 mine.txt orig.txt yours.txt",
		Args:    qcli.ExactArgs(3),
	}
	fs := cmd.Flags()
	toStdout := fs.Bool("stdout", 'p', false, "Print the result instead of overwriting CURRENT.")
	style := fs.String("style", 0, "", "Conflict style: merge, diff3 or zdiff3 (default: config merge.conflict_style).")
	favor := fs.String("favor", 0, "", "Resolve conflicts: none, ours, theirs or union (default: config merge.favor).")
	level := fs.Int("level", 0, 0, "0 minimal, 1 eager, 2 zealous, 3 zealous with alnum (default: config merge.level).")
	markerSize := fs.Int("marker-size", 0, 0, "Conflict marker width (default: config merge.marker_size).")
	oursLabel := fs.String("label-current", 0, "", "Label for CURRENT's side (default: its path).")
	baseLabel := fs.String("label-base", 0, "", "Label for BASE's side (default: its path).")
	theirsLabel := fs.String("label-other", 0, "", "Label for OTHER's side (default: its path).")
	minimal := fs.Bool("minimal", 0, false, "Spend extra time to find the smallest diffs.")
	ws := addWhitespaceFlags(fs)

	cmd.Run = runWithConfig("merge", func(c *qcli.Context, cfg Config) error {
		currentPath, basePath, otherPath := c.Args[0], c.Args[1], c.Args[2]
		if stdinArgs(currentPath, basePath, otherPath) > 1 {
			return qcli.UsageError{Message: "at most one of CURRENT, BASE and OTHER may be \"-\""}
		}

		opts, err := mergeOptions(cfg, func(o *merge3.Options) error {
			var err error
			if o.Style, err = merge3.ParseStyle(stringFlag(fs, "style", style, cfg.Merge.ConflictStyle)); err != nil {
				return err
			}
			if o.Favor, err = merge3.ParseFavor(stringFlag(fs, "favor", favor, cfg.Merge.Favor)); err != nil {
				return err
			}
			o.Level = merge3.Level(intFlag(fs, "level", level, cfg.Merge.Level))
			o.MarkerSize = intFlag(fs, "marker-size", markerSize, cfg.Merge.MarkerSize)
			o.Diff.NeedMinimal = boolFlag(fs, "minimal", minimal, cfg.Diff.Minimal)
			o.Diff.Policy, err = ws.policy(cfg.Diff.Whitespace)
			return err
		})
		if err != nil {
			return qcli.UsageError{Message: err.Error()}
		}
		opts.OursLabel = firstNonEmpty(*oursLabel, currentPath)
		opts.AncestorLabel = firstNonEmpty(*baseLabel, basePath)
		opts.TheirsLabel = firstNonEmpty(*theirsLabel, otherPath)

		var inputs [3][]byte
		for i, path := range []string{currentPath, basePath, otherPath} {
			if inputs[i], err = readInput(c.In, path); err != nil {
				return err
			}
		}

		res, err := merge3.Merge(inputs[1], inputs[0], inputs[2], opts)
		simplelogger.Logger().Info("merge",
			zap.String("current", currentPath), zap.Int("current_bytes", len(inputs[0])),
			zap.String("base", basePath), zap.Int("base_bytes", len(inputs[1])),
			zap.String("other", otherPath), zap.Int("other_bytes", len(inputs[2])),
			zap.Stringer("style", opts.Style), zap.Stringer("favor", opts.Favor), zap.Int("level", int(opts.Level)))
		if err != nil {
			if errors.Is(err, xdiff.ErrTooLarge) {
				return qcli.ExitError{Code: 1, Err: err}
			}
			return err
		}
		simplelogger.Logger().Info("merged", zap.Int("conflicts", res.Conflicts), zap.Int("atoms", len(res.Atoms)))

		if *toStdout || currentPath == "-" {
			if _, err := c.Out.Write(res.Output); err != nil {
				return err
			}
		} else if err := writeFileKeepMode(currentPath, res.Output); err != nil {
			return fmt.Errorf("write %s: %w", currentPath, err)
		}

		if res.Conflicts > 0 {
			return qcli.ExitError{Code: countExitCode(res.Conflicts)}
		}
		return nil
	})
	return cmd
}

// mergeOptions builds merge options from cfg, lets set apply flag overrides, and validates the result.
func mergeOptions(cfg Config, set func(o *merge3.Options) error) (merge3.Options, error) {
	opts := merge3.Options{Diff: xdiff.Options{CompactionHeuristic: cfg.Diff.CompactionHeuristic}}
	if err := set(&opts); err != nil {
		return merge3.Options{}, err
	}
	if opts.MarkerSize <= 0 {
		return merge3.Options{}, fmt.Errorf("marker size must be > 0 (got %d)", opts.MarkerSize)
	}
	if err := opts.Validate(); err != nil {
		return merge3.Options{}, err
	}
	return opts, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
