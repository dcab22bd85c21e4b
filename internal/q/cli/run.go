package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type Options struct {
	// Args is the argv excluding the program name (typically os.Args[1:]).
	Args []string

	// In/Out/Err override standard I/O. If nil, the os streams are used.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Context is passed to a command handler. Flag values are read through the variables bound when the command was built.
type Context struct {
	context.Context

	Command *Command
	Args    []string

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes a command tree as a CLI program and returns a process exit code:
//   - 0 on success or after printing help;
//   - 2 for usage errors, after printing usage to Err;
//   - the Code of an ExitError returned by the handler;
//   - 1 for any other handler error.
func Run(ctx context.Context, root *Command, opts Options) int {
	if root == nil || root.Name == "" {
		panic("cli: Run needs a named root command")
	}
	c := &Context{Context: ctx, In: opts.In, Out: opts.Out, Err: opts.Err}
	if c.In == nil {
		c.In = os.Stdin
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.Err == nil {
		c.Err = os.Stderr
	}

	selected, args, err := parseArgv(root, opts.Args, c.Out)
	switch {
	case errors.Is(err, errHelpPrinted):
		return 0
	case err != nil:
		return usage(selected, err, c.Err)
	case selected.Run == nil && len(args) == 0:
		return usage(selected, usageErrorf("missing required subcommand"), c.Err)
	case selected.Run == nil:
		return usage(selected, usageErrorf("unknown subcommand: %s", args[0]), c.Err)
	}

	if selected.Args != nil {
		if err := selected.Args(args); err != nil {
			// Any error other than an ExitError is a usage mistake.
			var ee ExitError
			if errors.As(err, &ee) {
				return exitFor(selected, err, c.Err)
			}
			return usage(selected, err, c.Err)
		}
	}

	c.Command, c.Args = selected, args
	if err := selected.Run(c); err != nil {
		return exitFor(selected, err, c.Err)
	}
	return 0
}

var errHelpPrinted = errors.New("help printed")

// parseArgv selects the deepest command named by the leading non-flag tokens and parses flags anywhere in argv. Tokens after "--" are
// positional.
func parseArgv(root *Command, argv []string, out io.Writer) (*Command, []string, error) {
	selected := root
	selecting := true
	var positional []string

	for i := 0; i < len(argv); i++ {
		token := argv[i]
		switch {
		case token == "--":
			return selected, append(positional, argv[i+1:]...), nil

		case token == "-h" || token == "--help":
			writeHelp(out, selected)
			return selected, nil, errHelpPrinted

		case strings.HasPrefix(token, "-") && token != "-":
			var next *string
			if i+1 < len(argv) {
				next = &argv[i+1]
			}
			consumed, err := parseFlagToken(selected.Flags(), token, next)
			if err != nil {
				return selected, nil, err
			}
			if consumed {
				i++
			}

		default:
			if selecting {
				if child := selected.subs[token]; child != nil {
					selected = child
					continue
				}
				selecting = false
			}
			positional = append(positional, token)
		}
	}
	return selected, positional, nil
}

// parseFlagToken handles "--name", "--name=value", "-x", "-x=value", and single-dash long names ("-name").
func parseFlagToken(fs *FlagSet, token string, next *string) (bool, error) {
	body := strings.TrimPrefix(token, "-")
	long := strings.HasPrefix(body, "-")
	body = strings.TrimPrefix(body, "-")

	name, value, hasValue := strings.Cut(body, "=")
	var valuePtr *string
	if hasValue {
		valuePtr = &value
	}
	return fs.set(token, fs.lookup(name, long), valuePtr, next)
}

// exitFor reports a handler error to errOut and returns its exit code. An ExitError without Err prints nothing.
func exitFor(cmd *Command, err error, errOut io.Writer) int {
	code, isUsage := exitCode(err)
	if isUsage {
		return usage(cmd, err, errOut)
	}
	var ee ExitError
	if code != 0 && !(errors.As(err, &ee) && ee.Err == nil) {
		fmt.Fprintln(errOut, err.Error())
	}
	return code
}

// usage prints err and cmd's help to errOut, and returns 2.
func usage(cmd *Command, err error, errOut io.Writer) int {
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(errOut, msg)
		fmt.Fprintln(errOut)
	}
	writeHelp(errOut, cmd)
	return exitUsage
}
