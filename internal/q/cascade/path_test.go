package cascade

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setHome points the home directory at a fresh temp dir for the rest of the test.
func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	} else {
		t.Setenv("HOME", home)
	}
	return home
}

func TestExpandPath(t *testing.T) {
	home := setHome(t)

	assert.Equal(t, "", ExpandPath(""))
	assert.True(t, filepath.IsAbs(ExpandPath("foo/bar")))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, home, ExpandPath("~/"))
	assert.Equal(t, filepath.Join(home, "sub", "dir"), ExpandPath("~/sub/dir"))
	assert.Equal(t, filepath.Join(home, "sub"), ExpandPath(`~\sub`))

	abs := filepath.Join(home, "already", "abs")
	assert.Equal(t, abs, ExpandPath(abs))

	// "~user" is not expanded.
	require.Contains(t, ExpandPath("~user/x"), "~user")
}

func TestInUserConfigDirectory(t *testing.T) {
	home := setHome(t)
	if runtime.GOOS == "windows" {
		assert.Equal(t, filepath.Join(home, "AppData", "Local", "my", "app.json"), InUserConfigDirectory("my/app.json"))
	} else {
		assert.Equal(t, filepath.Join(home, "my", "app.json"), InUserConfigDirectory("my/app.json"))
	}
}
