package cli

import (
	"fmt"

	"github.com/codalotl/textmerge/internal/applypatch"
	qcli "github.com/codalotl/textmerge/internal/q/cli"
	"github.com/codalotl/textmerge/internal/simplelogger"
	"go.uber.org/zap"
)

func newApplyCommand() *qcli.Command {
	cmd := &qcli.Command{
		Name:    "apply",
		Short:   "Apply a unified diff to a file.",
		Long:    "Applies PATCH (a unified diff such as `textmerge diff` prints; \"-\" for stdin) to FILE. Context must match exactly.",
		Usage:   "FILE PATCH",
		Example: "textmerge diff old.txt new.txt > p.diff\ntextmerge apply old.txt p.diff",
		Args:    qcli.ExactArgs(2),
	}
	toStdout := cmd.Flags().Bool("stdout", 'p', false, "Print the result instead of overwriting FILE.")

	cmd.Run = func(c *qcli.Context) error {
		path, patchPath := c.Args[0], c.Args[1]
		if stdinArgs(path, patchPath) > 1 {
			return qcli.UsageError{Message: "at most one of FILE and PATCH may be \"-\""}
		}
		old, err := readInput(c.In, path)
		if err != nil {
			return err
		}
		patch, err := readInput(c.In, patchPath)
		if err != nil {
			return err
		}

		out, err := applypatch.Apply(old, string(patch))
		simplelogger.Logger().Info("apply", zap.String("file", path), zap.Int("file_bytes", len(old)), zap.String("patch", patchPath), zap.Int("patch_bytes", len(patch)), zap.Error(err))
		if err != nil {
			if applypatch.IsInvalidPatch(err) {
				return qcli.ExitError{Code: 1, Err: fmt.Errorf("%s: %w", patchPath, err)}
			}
			return err
		}

		if *toStdout || path == "-" {
			_, err = c.Out.Write(out)
			return err
		}
		return writeFileKeepMode(path, out)
	}
	return cmd
}
