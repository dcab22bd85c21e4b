package cli

import (
	"github.com/codalotl/textmerge/internal/lineclass"
	qcli "github.com/codalotl/textmerge/internal/q/cli"
)

// whitespaceFlags are the line-comparison flags shared by diff and merge.
type whitespaceFlags struct {
	fs *qcli.FlagSet

	all, change, eol, cr *bool
}

func addWhitespaceFlags(fs *qcli.FlagSet) *whitespaceFlags {
	return &whitespaceFlags{
		fs:     fs,
		all:    fs.Bool("ignore-all-space", 'w', false, "Ignore whitespace when comparing lines."),
		change: fs.Bool("ignore-space-change", 'b', false, "Ignore changes in amount of whitespace."),
		eol:    fs.Bool("ignore-space-at-eol", 0, false, "Ignore whitespace at end of line."),
		cr:     fs.Bool("ignore-cr-at-eol", 0, false, "Ignore carriage return at end of line."),
	}
}

// policy returns the line policy from the flags if any was given, else from configured names.
func (w *whitespaceFlags) policy(configured []string) (lineclass.Policy, error) {
	set := false
	for _, name := range []string{"ignore-all-space", "ignore-space-change", "ignore-space-at-eol", "ignore-cr-at-eol"} {
		set = set || w.fs.Changed(name)
	}
	if !set {
		return parseWhitespace(configured)
	}

	var names []string
	if *w.all {
		names = append(names, "all")
	}
	if *w.change {
		names = append(names, "change")
	}
	if *w.eol {
		names = append(names, "eol")
	}
	if *w.cr {
		names = append(names, "cr")
	}
	return parseWhitespace(names)
}

// intFlag returns the flag value if it was given, else the configured value.
func intFlag(fs *qcli.FlagSet, name string, flag *int, configured int) int {
	if fs.Changed(name) {
		return *flag
	}
	return configured
}

func boolFlag(fs *qcli.FlagSet, name string, flag *bool, configured bool) bool {
	if fs.Changed(name) {
		return *flag
	}
	return configured
}

func stringFlag(fs *qcli.FlagSet, name string, flag *string, configured string) string {
	if fs.Changed(name) {
		return *flag
	}
	return configured
}
