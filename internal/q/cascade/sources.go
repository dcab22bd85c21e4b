package cascade

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// cascadeSource supplies key/value data to the loader in normalized form.
type cascadeSource interface {
	// Name returns a human-readable label for the source, used in error messages.
	Name() string

	// Providence identifies the source in a LoadReport.
	Providence() Providence

	// ToMap returns a normalized map:
	//   - keys are lower cased and contain no "." (dots in input keys create nested maps)
	//   - nested objects are map[string]any
	//   - scalars are int, float64, bool or string; arrays are []any of scalars; nil is allowed
	ToMap() (map[string]any, error)
}

// sourceMap adapts a Go map whose keys may use dot-notation.
type sourceMap struct {
	m map[string]any
}

func (s *sourceMap) Name() string           { return "Defaults" }
func (s *sourceMap) Providence() Providence { return Providence{SourceType: SourceDefault} }

func (s *sourceMap) ToMap() (map[string]any, error) {
	return normalizeMap(s.m)
}

// sourceFile reads a JSON or TOML file at load time. Empty or whitespace-only files contribute no values.
type sourceFile struct {
	path   string
	format string // "json" or "toml"
}

func (s *sourceFile) Name() string {
	return fmt.Sprintf("%s File: %s", strings.ToUpper(s.format), s.path)
}

func (s *sourceFile) Providence() Providence {
	return Providence{SourceType: s.format + "_file", SourceIdentifier: ExpandPath(s.path)}
}

func (s *sourceFile) ToMap() (map[string]any, error) {
	path := ExpandPath(s.path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", s.format, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return map[string]any{}, nil
	}

	var raw map[string]any
	switch s.format {
	case "toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		var top any
		if err := json.Unmarshal(data, &top); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		m, ok := top.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("top-level JSON must be an object")
		}
		raw = m
	}
	return normalizeMap(raw)
}

// formatForPath returns "toml" for a .toml path and "json" otherwise.
func formatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "json"
}

// sourceEnv maps configuration keys ("." allowed for nesting) to environment variables. Missing or empty variables set nothing; present
// values are strings.
type sourceEnv struct {
	envToKey map[string]string
}

func (s *sourceEnv) Name() string           { return "ENV" }
func (s *sourceEnv) Providence() Providence { return Providence{SourceType: SourceEnv} }

func (s *sourceEnv) ToMap() (map[string]any, error) {
	out := map[string]any{}
	for key, envVar := range s.envToKey {
		if envVar == "" {
			continue
		}
		// An empty variable would otherwise clobber a value from a config file.
		if val := os.Getenv(envVar); val != "" {
			if err := mergeIntoObject(out, strings.Split(key, "."), val, key); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// normalizeMap lowercases keys, expands dotted keys into nested maps, and converts values into the normalized types.
func normalizeMap(m map[string]any) (map[string]any, error) {
	out := map[string]any{}
	for k, v := range m {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("key '%s': %w", k, err)
		}
		if err := mergeIntoObject(out, strings.Split(k, "."), nv, k); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// normalizeValue converts decoded values (JSON float64 numbers, TOML int64 numbers, []any arrays) into the normalized types.
func normalizeValue(v any) (any, error) {
	switch vv := v.(type) {
	case nil, string, bool, float64, int:
		return vv, nil
	case int64:
		return int(vv), nil
	case map[string]any:
		return normalizeMap(vv)
	case []string:
		out := make([]any, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			ne, err := normalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			if _, isMap := ne.(map[string]any); isMap {
				return nil, fmt.Errorf("array element %d: arrays of objects are not supported", i)
			}
			if _, isArr := ne.([]any); isArr {
				return nil, fmt.Errorf("array element %d: nested arrays are not supported", i)
			}
			out[i] = ne
		}
		return out, nil
	}
	return nil, fmt.Errorf("type %T is not allowed", v)
}

// mergeIntoObject inserts value into obj along parts, lowercasing each segment. Map values at the leaf are deep-merged. It returns an error
// when a key is set twice or a segment is both an object and a value. fullKey annotates errors.
func mergeIntoObject(obj map[string]any, parts []string, value any, fullKey string) error {
	part := strings.ToLower(parts[0])
	if part == "" {
		return fmt.Errorf("invalid key '%s'", fullKey)
	}
	existing, exists := obj[part]

	if len(parts) > 1 {
		if !exists {
			child := map[string]any{}
			obj[part] = child
			return mergeIntoObject(child, parts[1:], value, fullKey)
		}
		child, ok := existing.(map[string]any)
		if !ok {
			return fmt.Errorf("key conflict at '%s': '%s' is not an object", fullKey, part)
		}
		return mergeIntoObject(child, parts[1:], value, fullKey)
	}

	mv, isMap := value.(map[string]any)
	if !exists {
		obj[part] = value
		return nil
	}
	dest, destIsMap := existing.(map[string]any)
	if !isMap || !destIsMap {
		return fmt.Errorf("key conflict: key '%s' was already set", fullKey)
	}
	for k, v := range mv {
		if err := mergeIntoObject(dest, []string{k}, v, fullKey+"."+k); err != nil {
			return err
		}
	}
	return nil
}
