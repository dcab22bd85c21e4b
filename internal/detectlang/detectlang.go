// Package detectlang guesses a file's programming language from its name, to choose how function lines are recognized.
package detectlang

import (
	"path/filepath"
	"strings"
)

// Lang represents a detected programming language.
type Lang string

const (
	LangUnknown    Lang = ""
	LangGo         Lang = "go"
	LangPython     Lang = "py"
	LangRust       Lang = "rs"
	LangC          Lang = "c"
	LangCpp        Lang = "cpp"
	LangJavaScript Lang = "js"
	LangTypeScript Lang = "ts"
	LangJava       Lang = "java"
)

var extToLang = map[string]Lang{
	".go":   LangGo,
	".py":   LangPython,
	".pyi":  LangPython,
	".rs":   LangRust,
	".c":    LangC,
	".h":    LangC,
	".cpp":  LangCpp,
	".cc":   LangCpp,
	".cxx":  LangCpp,
	".hpp":  LangCpp,
	".hh":   LangCpp,
	".hxx":  LangCpp,
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".jsx":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".java": LangJava,
}

// ForPath returns the language of path by its extension (case-insensitive), or LangUnknown. The file is not read; "-" and paths without
// an extension are unknown.
func ForPath(path string) Lang {
	return extToLang[strings.ToLower(filepath.Ext(path))]
}

// FirstKnown returns the language of the first path whose language is known.
func FirstKnown(paths ...string) Lang {
	for _, p := range paths {
		if lang := ForPath(p); lang != LangUnknown {
			return lang
		}
	}
	return LangUnknown
}

// FuncPatternName returns the name of the builtin function-line pattern for lang ("golang", "python", "cpp" or "rust"), or "" when lang has
// none. C shares the cpp pattern.
func FuncPatternName(lang Lang) string {
	switch lang {
	case LangGo:
		return "golang"
	case LangPython:
		return "python"
	case LangC, LangCpp:
		return "cpp"
	case LangRust:
		return "rust"
	}
	return ""
}
