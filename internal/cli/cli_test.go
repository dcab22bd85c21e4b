package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/codalotl/textmerge/internal/lineclass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in a fresh working directory with a fresh home, so no user or project config is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	} else {
		t.Setenv("HOME", home)
	}
	for _, envVar := range configEnv() {
		t.Setenv(envVar, "")
	}
	t.Setenv("TEXTMERGE_LOG_FILE", "")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func read(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(b)
}

func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code, err := Run(append([]string{"textmerge"}, args...), &RunOptions{In: strings.NewReader(stdin), Out: &out, Err: &errOut})
	if code == 0 {
		assert.NoError(t, err)
	} else {
		assert.Error(t, err)
	}
	return code, out.String(), errOut.String()
}

func TestRun_Help(t *testing.T) {
	isolate(t)
	code, out, errOut := run(t, "", "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "textmerge")
	for _, name := range []string{"diff", "merge", "apply", "config", "version"} {
		assert.Contains(t, out, "  "+name)
	}
	assert.Empty(t, errOut)
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, Version+"\n", out)
}

func TestRun_UsageErrors(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{{"diff", "a"}, {"merge", "a", "b"}, {"apply"}, {"bogus"}, {"diff", "--nope", "a", "b"}} {
		code, _, errOut := run(t, "", args...)
		assert.Equal(t, 2, code, "%v", args)
		assert.Contains(t, errOut, "Usage:", "%v", args)
	}
}

func TestDiff(t *testing.T) {
	isolate(t)
	write(t, "old.txt", "a\nb\nc\n")
	write(t, "new.txt", "a\nB\nc\n")
	write(t, "same.txt", "a\nb\nc\n")

	code, out, _ := run(t, "", "diff", "old.txt", "new.txt")
	assert.Equal(t, 1, code)
	assert.Equal(t, "--- old.txt\n+++ new.txt\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n", out)

	code, out, _ = run(t, "", "diff", "-U", "0", "old.txt", "new.txt")
	assert.Equal(t, 1, code)
	assert.Equal(t, "--- old.txt\n+++ new.txt\n@@ -2 +2 @@\n-b\n+B\n", out)

	code, out, _ = run(t, "", "diff", "old.txt", "same.txt")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)

	code, out, _ = run(t, "a\nb\nc\n", "diff", "-", "new.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "--- -\n")

	code, out, _ = run(t, "", "diff", "--color=always", "old.txt", "new.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "\x1b[31m-b\x1b[0m")

	code, out, _ = run(t, "", "diff", "--pretty", "old.txt", "new.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "old.txt -> new.txt:")
}

func TestDiff_Whitespace(t *testing.T) {
	isolate(t)
	write(t, "old.txt", "a\nb  c\n")
	write(t, "new.txt", "a\nb c \n")

	code, _, _ := run(t, "", "diff", "old.txt", "new.txt")
	assert.Equal(t, 1, code)
	code, _, _ = run(t, "", "diff", "-b", "old.txt", "new.txt")
	assert.Equal(t, 0, code)
	code, _, _ = run(t, "", "diff", "-w", "old.txt", "new.txt")
	assert.Equal(t, 0, code)

	code, _, errOut := run(t, "", "diff", "-w", "-b", "old.txt", "new.txt")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "mutually exclusive")
}

func TestDiff_FunctionNames(t *testing.T) {
	isolate(t)
	write(t, "old.go", "package p\n\nfunc f() {\n\ta()\n\tb()\n\tc()\n\td()\n}\n")
	write(t, "new.go", "package p\n\nfunc f() {\n\ta()\n\tb()\n\tc()\n\tD()\n}\n")

	code, out, _ := run(t, "", "diff", "-U", "1", "-p", "--funcname", "golang", "old.go", "new.go")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "@@ -6,3 +6,3 @@ func f() {\n")
}

func TestDiff_FunctionNamesByExtension(t *testing.T) {
	isolate(t)
	oldText := "class C:\n    def m(self):\n        a = 1\n        b = 2\n        c = 3\n        d = 4\n"
	newText := "class C:\n    def m(self):\n        a = 1\n        b = 2\n        c = 3\n        d = 5\n"
	write(t, "old.py", oldText)
	write(t, "new.py", newText)
	write(t, "old.txt", oldText)
	write(t, "new.txt", newText)

	_, out, _ := run(t, "", "diff", "-U", "1", "-p", "old.py", "new.py")
	assert.Contains(t, out, "@@ -5,2 +5,2 @@ def m(self):\n")

	// Without a known extension the default matcher only sees unindented lines.
	_, out, _ = run(t, "", "diff", "-U", "1", "-p", "old.txt", "new.txt")
	assert.Contains(t, out, "@@ -5,2 +5,2 @@ class C:\n")
}

func TestDiff_MissingFile(t *testing.T) {
	isolate(t)
	write(t, "old.txt", "a\n")
	code, _, errOut := run(t, "", "diff", "old.txt", "missing.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "missing.txt")
}

func TestDiff_Config(t *testing.T) {
	dir := isolate(t)
	write(t, "old.txt", "1\n2\n3\n4\n5\n")
	write(t, "new.txt", "1\n2\nX\n4\n5\n")

	write(t, filepath.Join(dir, ".textmerge", "config.toml"), "[diff]\ncontext = 0\n")
	code, out, _ := run(t, "", "diff", "old.txt", "new.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "@@ -3 +3 @@\n-3\n+X\n")

	// Env beats the project file; flags beat both.
	t.Setenv("TEXTMERGE_DIFF_CONTEXT", "1")
	_, out, _ = run(t, "", "diff", "old.txt", "new.txt")
	assert.Contains(t, out, "@@ -2,3 +2,3 @@\n")
	_, out, _ = run(t, "", "diff", "-U", "2", "old.txt", "new.txt")
	assert.Contains(t, out, "@@ -1,5 +1,5 @@\n")

	t.Setenv("TEXTMERGE_DIFF_CONTEXT", "-1")
	code, _, errOut := run(t, "", "diff", "old.txt", "new.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "diff.context must be >= 0")
}

func TestMerge(t *testing.T) {
	isolate(t)
	write(t, "base.txt", "1\n2\n3\n")
	write(t, "other.txt", "1\nY\n3\n")

	write(t, "cur.txt", "0\n1\n2\n3\n")
	code, out, _ := run(t, "", "merge", "-p", "cur.txt", "base.txt", "other.txt")
	assert.Equal(t, 0, code)
	assert.Equal(t, "0\n1\nY\n3\n", out)
	assert.Equal(t, "0\n1\n2\n3\n", read(t, "cur.txt"))

	code, out, _ = run(t, "", "merge", "cur.txt", "base.txt", "other.txt")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
	assert.Equal(t, "0\n1\nY\n3\n", read(t, "cur.txt"))
}

func TestMerge_Conflicts(t *testing.T) {
	isolate(t)
	write(t, "base.txt", "1\n2\n3\n")
	write(t, "other.txt", "1\nY\n3\n")
	write(t, "cur.txt", "1\nX\n3\n")

	code, out, errOut := run(t, "", "merge", "-p", "cur.txt", "base.txt", "other.txt")
	assert.Equal(t, 1, code)
	assert.Empty(t, errOut)
	assert.Equal(t, "1\n<<<<<<< cur.txt\nX\n=======\nY\n>>>>>>> other.txt\n3\n", out)

	_, out, _ = run(t, "", "merge", "-p", "--style", "diff3", "--label-current", "mine", "cur.txt", "base.txt", "other.txt")
	assert.Equal(t, "1\n<<<<<<< mine\nX\n||||||| base.txt\n2\n=======\nY\n>>>>>>> other.txt\n3\n", out)

	_, out, _ = run(t, "", "merge", "-p", "--marker-size", "3", "cur.txt", "base.txt", "other.txt")
	assert.Equal(t, "1\n<<< cur.txt\nX\n===\nY\n>>> other.txt\n3\n", out)

	code, out, _ = run(t, "", "merge", "-p", "--favor", "theirs", "cur.txt", "base.txt", "other.txt")
	assert.Equal(t, 0, code)
	assert.Equal(t, "1\nY\n3\n", out)

	// Written back to CURRENT, the exit status counts the conflicts.
	write(t, "base2.txt", "a\nb\nc\nd\ne\nf\ng\nh\n")
	write(t, "cur2.txt", "a\nB1\nc\nd\ne\nf\nG1\nh\n")
	write(t, "other2.txt", "a\nB2\nc\nd\ne\nf\nG2\nh\n")
	code, _, _ = run(t, "", "merge", "cur2.txt", "base2.txt", "other2.txt")
	assert.Equal(t, 2, code)
	assert.Contains(t, read(t, "cur2.txt"), "<<<<<<< cur2.txt\nB1\n=======\nB2\n>>>>>>> other2.txt\n")

	code, _, errOut = run(t, "", "merge", "--style", "fancy", "cur.txt", "base.txt", "other.txt")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown conflict style")
}

func TestMerge_StdinOnce(t *testing.T) {
	isolate(t)
	write(t, "base.txt", "1\n2\n3\n")
	write(t, "other.txt", "1\nY\n3\n")

	code, out, errOut := run(t, "1\n2\n3\n", "merge", "-p", "-", "-", "other.txt")
	assert.Equal(t, 2, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "at most one of CURRENT, BASE and OTHER")

	code, out, _ = run(t, "0\n1\n2\n3\n", "merge", "-", "base.txt", "other.txt")
	assert.Equal(t, 0, code)
	assert.Equal(t, "0\n1\nY\n3\n", out)
}

func TestMerge_EqualSidesAtDefaultLevel(t *testing.T) {
	isolate(t)
	write(t, "base.txt", "A\nA\nB\nB\nC\nB\n")
	write(t, "cur.txt", "B\nA\nA\nA\nB\n")
	write(t, "other.txt", "A\nA\nB\n")

	code, out, _ := run(t, "", "merge", "-p", "cur.txt", "base.txt", "other.txt")
	assert.Equal(t, strings.Count(out, "<<<<<<< cur.txt"), code)
	assert.NotEmpty(t, out)
}

func TestApply(t *testing.T) {
	isolate(t)
	write(t, "old.txt", "a\nb\nc\nd\n")
	write(t, "new.txt", "a\nB\nc\nd\ne")

	code, patch, _ := run(t, "", "diff", "old.txt", "new.txt")
	require.Equal(t, 1, code)
	write(t, "change.diff", patch)

	code, out, _ := run(t, "", "apply", "-p", "old.txt", "change.diff")
	assert.Equal(t, 0, code)
	assert.Equal(t, "a\nB\nc\nd\ne", out)

	code, _, _ = run(t, patch, "apply", "old.txt", "-")
	assert.Equal(t, 0, code)
	assert.Equal(t, "a\nB\nc\nd\ne", read(t, "old.txt"))

	// The patch no longer fits the updated file.
	code, _, errOut := run(t, "", "apply", "old.txt", "change.diff")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid patch")
	assert.Equal(t, "a\nB\nc\nd\ne", read(t, "old.txt"))
}

func TestConfigCommand(t *testing.T) {
	dir := isolate(t)
	projectCfg := filepath.Join(dir, ".textmerge", "config.json")
	write(t, projectCfg, `{"merge": {"conflict_style": "zdiff3"}}`)
	t.Setenv("TEXTMERGE_DIFF_WHITESPACE", "change,cr")

	code, out, _ := run(t, "", "config")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "[diff]")
	assert.Contains(t, out, "context = 3")
	assert.Contains(t, out, `conflict_style = "zdiff3"`)
	assert.Contains(t, out, `whitespace = ["change", "cr"]`)
	assert.NotContains(t, out, "diff.context:")
	assert.Contains(t, out, "#   merge.conflict_style: json_file "+projectCfg+"\n")
	assert.Contains(t, out, "#   diff.whitespace: env\n")

	t.Setenv("TEXTMERGE_DIFF_WHITESPACE", "")
	require.NoError(t, os.Remove(projectCfg))
	_, out, _ = run(t, "", "config")
	assert.Contains(t, out, "# Overrides:\n#   none\n")
}

func TestRun_LogFile(t *testing.T) {
	dir := isolate(t)
	logPath := filepath.Join(dir, "textmerge.log")
	t.Setenv("TEXTMERGE_LOG_FILE", logPath)
	write(t, "a.txt", "1\n")
	write(t, "b.txt", "2\n")

	code, _, _ := run(t, "", "diff", "a.txt", "b.txt")
	assert.Equal(t, 1, code)

	logged := read(t, logPath)
	assert.Contains(t, logged, "config loaded from [default")
	assert.Contains(t, logged, `"hunks": 1`)
}

func TestConfig_Invalid(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, ".textmerge", "config.toml"), "[merge]\nfavor = \"mine\"\nmarker_size = 0\n")

	code, _, errOut := run(t, "", "config")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid configuration")
	assert.Contains(t, errOut, "unknown favor")
	assert.Contains(t, errOut, "merge.marker_size must be > 0")
}

func TestParseWhitespace(t *testing.T) {
	p, err := parseWhitespace([]string{"eol", "cr"})
	require.NoError(t, err)
	assert.True(t, p.IgnoreCRAtEOL)
	assert.Equal(t, lineclass.WhitespaceIgnoreAtEOL, p.Whitespace)

	_, err = parseWhitespace([]string{"tabs"})
	assert.Error(t, err)
}

func TestCountExitCode(t *testing.T) {
	assert.Equal(t, 0, countExitCode(0))
	assert.Equal(t, 5, countExitCode(5))
	assert.Equal(t, 127, countExitCode(300))
}
