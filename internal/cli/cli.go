package cli

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	qcli "github.com/codalotl/textmerge/internal/q/cli"
	"github.com/codalotl/textmerge/internal/simplelogger"
	"go.uber.org/zap"
)

// Version is the textmerge version. It is a var so builds can override it with -ldflags "-X .../internal/cli.Version=1.2.3".
var Version = "0.3.0"

// RunOptions replaces the process streams for Run. Nil fields, or a nil *RunOptions, use os.Stdin, os.Stdout and os.Stderr.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (o *RunOptions) streams() (io.Reader, io.Writer, io.Writer) {
	if o == nil {
		o = &RunOptions{}
	}
	return cmp.Or[io.Reader](o.In, os.Stdin), cmp.Or[io.Writer](o.Out, os.Stdout), cmp.Or[io.Writer](o.Err, os.Stderr)
}

// Run runs the CLI with args, a full argv whose first element is the program name.
//
// It returns the process exit code and, when that code is non-zero, an error carrying what was printed to stderr:
//   - 0: success, or diff found no differences, or merge was clean.
//   - 1: diff found differences, or a command failed.
//   - 2: args parse error or misuse of flags.
//   - merge exits with the number of conflicts, capped at 127.
//
// The message has already been written to the error stream; callers only need to pass the code to os.Exit.
func Run(args []string, opts *RunOptions) (int, error) {
	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}
	in, out, errOut := opts.streams()

	// Stderr is teed so the error returned can carry the message.
	var captured bytes.Buffer
	code := qcli.Run(context.Background(), newRootCommand(), qcli.Options{Args: cmdArgs, In: in, Out: out, Err: io.MultiWriter(errOut, &captured)})
	if code == 0 {
		return 0, nil
	}

	msg := cmp.Or(strings.TrimSpace(captured.String()), fmt.Sprintf("exit status %d", code))
	simplelogger.Logger().Debug("exit", zap.Strings("args", cmdArgs), zap.Int("code", code), zap.String("message", msg))
	return code, errors.New(msg)
}
