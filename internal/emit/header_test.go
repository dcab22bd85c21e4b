package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHunkHeader(t *testing.T) {
	tests := []struct {
		h    HunkHeader
		want string
	}{
		{HunkHeader{OldStart: 1, OldCount: 7, NewStart: 1, NewCount: 7}, "@@ -1,7 +1,7 @@"},
		{HunkHeader{OldStart: 3, OldCount: 1, NewStart: 3, NewCount: 1}, "@@ -3 +3 @@"},
		{HunkHeader{OldStart: 3, OldCount: 0, NewStart: 3, NewCount: 1}, "@@ -2,0 +3 @@"},
		{HunkHeader{OldStart: 1, OldCount: 0, NewStart: 1, NewCount: 2}, "@@ -0,0 +1,2 @@"},
		{HunkHeader{OldStart: 5, OldCount: 3, NewStart: 5, NewCount: 3, Func: "func one() {"}, "@@ -5,3 +5,3 @@ func one() {"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHunkHeader(tt.h))
		assert.Equal(t, tt.want, tt.h.String())

		got, err := ParseHunkHeader(tt.want + "\n")
		require.NoError(t, err)
		assert.Equal(t, tt.h, got)
	}
}

func TestParseHunkHeader_MissingCount(t *testing.T) {
	h, err := ParseHunkHeader("@@ -4 +9,2 @@")
	require.NoError(t, err)
	assert.Equal(t, HunkHeader{OldStart: 4, OldCount: 1, NewStart: 9, NewCount: 2}, h)
}

func TestParseHunkHeader_Malformed(t *testing.T) {
	bad := []string{
		"",
		"@@ 1,2 +1,2 @@",
		"@@ -1,2 @@",
		"@@ -1,2 +1,2",
		"@@ -a,2 +1,2 @@",
		"@@ -1,-2 +1,2 @@",
		"@@ -1, +1,2 @@",
		"@@ -0,3 +1,3 @@",
		"@@ -1,2 +1,2 @@func",
	}
	for _, line := range bad {
		_, err := ParseHunkHeader(line)
		assert.ErrorIs(t, err, ErrMalformedHunkHeader, "line %q", line)
	}
}
