package detectlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForPath(t *testing.T) {
	tcs := []struct {
		path string
		lang Lang
	}{
		{"main.go", LangGo},
		{"dir/handler.PY", LangPython},
		{"lib.rs", LangRust},
		{"x.h", LangC},
		{"a/b/main.cc", LangCpp},
		{"component.tsx", LangTypeScript},
		{"App.java", LangJava},
		{"README", LangUnknown},
		{"notes.txt", LangUnknown},
		{"-", LangUnknown},
		{"", LangUnknown},
	}
	for _, tc := range tcs {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.lang, ForPath(tc.path))
		})
	}
}

func TestFirstKnown(t *testing.T) {
	assert.Equal(t, LangRust, FirstKnown("-", "old.txt", "new.rs", "x.go"))
	assert.Equal(t, LangUnknown, FirstKnown("-", "a.txt"))
	assert.Equal(t, LangUnknown, FirstKnown())
}

func TestFuncPatternName(t *testing.T) {
	assert.Equal(t, "golang", FuncPatternName(LangGo))
	assert.Equal(t, "python", FuncPatternName(LangPython))
	assert.Equal(t, "cpp", FuncPatternName(LangC))
	assert.Equal(t, "cpp", FuncPatternName(LangCpp))
	assert.Equal(t, "rust", FuncPatternName(LangRust))
	assert.Equal(t, "", FuncPatternName(LangJava))
	assert.Equal(t, "", FuncPatternName(LangUnknown))
}
