package cascade

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Source types reported in Providence.
const (
	SourceDefault  = "default"
	SourceJSONFile = "json_file"
	SourceTOMLFile = "toml_file"
	SourceEnv      = "env"
)

// Providence records where a value came from.
type Providence struct {
	SourceType       string // ex: "default", "env", "json_file", "toml_file"
	SourceIdentifier string // ex: "/path/to/config.toml". "" for sources without identifiers (defaults, env).
}

func (p Providence) Default() bool {
	return p.SourceType == SourceDefault
}

func (p Providence) String() string {
	if p.SourceIdentifier == "" {
		return p.SourceType
	}
	return p.SourceType + " " + p.SourceIdentifier
}

// LoadReport describes a completed load.
type LoadReport struct {
	Sources []Providence          // Sources that were read, from low to high priority. Missing files are not listed.
	Keys    map[string]Providence // Lowercase dotted field path -> the source that set it last.
}

// SortedKeys returns the keys of r.Keys in order.
func (r LoadReport) SortedKeys() []string {
	keys := make([]string, 0, len(r.Keys))
	for k := range r.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Loader builds a prioritized cascade of configuration sources and applies them to a destination struct. Register sources from lowest to
// highest priority with the With* methods, then call StrictlyLoad. The zero value is ready to use.
type Loader struct {
	sources []cascadeSource // low to high priority
}

// New returns a new Loader. It is equivalent to &Loader{} and exists for fluent chaining.
func New() *Loader {
	return &Loader{}
}

// WithDefaults registers m as a source of default values. Keys may use dot-notation.
func (c *Loader) WithDefaults(m map[string]any) *Loader {
	c.sources = append(c.sources, &sourceMap{m: m})
	return c
}

// WithJSONFile registers a JSON file. path is expanded with ExpandPath and read at load time.
func (c *Loader) WithJSONFile(path string) *Loader {
	c.sources = append(c.sources, &sourceFile{path: path, format: "json"})
	return c
}

// WithTOMLFile registers a TOML file. path is expanded with ExpandPath and read at load time.
func (c *Loader) WithTOMLFile(path string) *Loader {
	c.sources = append(c.sources, &sourceFile{path: path, format: "toml"})
	return c
}

// WithNearestFile searches upward from startingAbsolutePath (or the working directory, if empty) for the first readable, non-empty file
// matching one of fileNames, and registers it. At each directory, fileNames are tried in order. Names ending in ".toml" are read as TOML,
// others as JSON. It panics if a fileName is absolute. If no file is found, the loader is unchanged.
func (c *Loader) WithNearestFile(startingAbsolutePath string, fileNames ...string) *Loader {
	for _, name := range fileNames {
		if filepath.IsAbs(name) {
			panic("fileName shouldn't be absolute")
		}
	}
	if path := findNearest(startingAbsolutePath, fileNames); path != "" {
		c.sources = append(c.sources, &sourceFile{path: path, format: formatForPath(path)})
	}
	return c
}

func findNearest(start string, fileNames []string) string {
	if start == "" {
		start, _ = os.Getwd()
	}
	if start == "" {
		return ""
	}
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}
	for dir := start; ; dir = filepath.Dir(dir) {
		for _, name := range fileNames {
			candidate := filepath.Join(dir, name)
			if data, err := os.ReadFile(candidate); err == nil && strings.TrimSpace(string(data)) != "" {
				return candidate
			}
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

// WithEnv registers environment variables. m maps a configuration key (dots denote nesting) to a variable name.
func (c *Loader) WithEnv(m map[string]string) *Loader {
	c.sources = append(c.sources, &sourceEnv{envToKey: m})
	return c
}

// StrictlyLoad loads c's sources into dest, a non-nil pointer to a struct, with later sources overwriting earlier values.
//
// Keys match fields case-insensitively, by `cascade` tag name, then `json` tag name, then field name. Unknown keys are ignored. Values are
// coerced where reasonable ("4" -> 4, "true" -> true, 4 -> "4"); a comma-separated string fills a slice field. A field tagged
// `cascade:",required"` must be set by some source.
//
// Missing or unreadable files and empty files are skipped. A source that cannot be parsed, or a value that cannot be coerced, fails the load
// immediately; errors include the source's name.
func (c *Loader) StrictlyLoad(dest any) error {
	_, err := c.StrictlyLoadWithReport(dest)
	return err
}

// StrictlyLoadWithReport is StrictlyLoad, also returning which sources were read and which source set each field.
func (c *Loader) StrictlyLoadWithReport(dest any) (LoadReport, error) {
	report := LoadReport{Keys: map[string]Providence{}}

	destVal := reflect.ValueOf(dest)
	if dest == nil || destVal.Kind() != reflect.Ptr || destVal.IsNil() {
		return report, fmt.Errorf("dest must be a non-nil pointer to struct")
	}
	structVal := destVal.Elem()
	if structVal.Kind() != reflect.Struct {
		return report, fmt.Errorf("dest must be a pointer to struct, got %s", structVal.Kind())
	}

	for _, src := range c.sources {
		m, err := src.ToMap()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				continue
			}
			return report, fmt.Errorf("%s: %w", src.Name(), err)
		}
		prov := src.Providence()
		report.Sources = append(report.Sources, prov)
		a := applier{keys: report.Keys, prov: prov}
		if err := a.applyMap(structVal, m, ""); err != nil {
			return report, fmt.Errorf("%s: %w", src.Name(), err)
		}
	}

	if err := validateRequiredFields(structVal, "", report.Keys); err != nil {
		return report, err
	}
	return report, nil
}

// applier writes one source's normalized map into a struct, recording providence for every field it sets.
type applier struct {
	keys map[string]Providence
	prov Providence
}

func (a applier) applyMap(structVal reflect.Value, m map[string]any, basePath string) error {
	fields, err := fieldIndex(structVal)
	if err != nil {
		return err
	}
	for key, raw := range m {
		idx, ok := fields[key]
		if !ok {
			continue
		}
		path := key
		if basePath != "" {
			path = basePath + "." + key
		}
		if err := a.setField(structVal.Field(idx), raw, path); err != nil {
			return err
		}
	}
	return nil
}

func (a applier) setField(fVal reflect.Value, raw any, path string) error {
	if fVal.Kind() == reflect.Ptr {
		if fVal.IsNil() {
			fVal.Set(reflect.New(fVal.Type().Elem()))
		}
		return a.setField(fVal.Elem(), raw, path)
	}

	switch fVal.Kind() {
	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object for struct field", path)
		}
		return a.applyMap(fVal, obj, path)

	case reflect.Slice:
		var elems []any
		switch v := raw.(type) {
		case []any:
			elems = v
		case string:
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					elems = append(elems, part)
				}
			}
		default:
			return fmt.Errorf("%s: cannot coerce %T to %s", path, raw, fVal.Type())
		}
		slice := reflect.MakeSlice(fVal.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := setScalar(slice.Index(i), e, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		fVal.Set(slice)

	default:
		if err := setScalar(fVal, raw, path); err != nil {
			return err
		}
	}
	a.keys[path] = a.prov
	return nil
}

// setScalar coerces raw to fVal's kind and assigns it.
func setScalar(fVal reflect.Value, raw any, path string) error {
	kind := fVal.Kind()
	switch kind {
	case reflect.String:
		switch v := raw.(type) {
		case string:
			fVal.SetString(v)
		case int:
			fVal.SetString(strconv.Itoa(v))
		case float64:
			fVal.SetString(strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			fVal.SetString(strconv.FormatBool(v))
		default:
			return fmt.Errorf("%s: cannot coerce %T to string", path, raw)
		}
	case reflect.Bool:
		switch v := raw.(type) {
		case bool:
			fVal.SetBool(v)
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: cannot parse bool from %q", path, v)
			}
			fVal.SetBool(b)
		default:
			return fmt.Errorf("%s: cannot coerce %T to bool", path, raw)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := raw.(type) {
		case int:
			fVal.SetInt(int64(v))
		case float64:
			fVal.SetInt(int64(v))
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return fmt.Errorf("%s: cannot parse int from %q", path, v)
			}
			fVal.SetInt(n)
		default:
			return fmt.Errorf("%s: cannot coerce %T to int", path, raw)
		}
	case reflect.Float32, reflect.Float64:
		switch v := raw.(type) {
		case float64:
			fVal.SetFloat(v)
		case int:
			fVal.SetFloat(float64(v))
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s: cannot parse float from %q", path, v)
			}
			fVal.SetFloat(f)
		default:
			return fmt.Errorf("%s: cannot coerce %T to float", path, raw)
		}
	default:
		return fmt.Errorf("%s: unsupported field kind %s", path, kind)
	}
	return nil
}

// fieldKey returns the lowercase key for f: the cascade tag name, else the json tag name, else the field name. "-" means skip.
func fieldKey(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("cascade"), ","); strings.TrimSpace(name) != "" {
		return strings.ToLower(strings.TrimSpace(name))
	}
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return strings.ToLower(name)
	}
	return strings.ToLower(f.Name)
}

func isRequired(f reflect.StructField) bool {
	_, opts, _ := strings.Cut(f.Tag.Get("cascade"), ",")
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == "required" {
			return true
		}
	}
	return false
}

// fieldIndex maps each settable field's key to its index. It errors when two fields share a key.
func fieldIndex(structVal reflect.Value) (map[string]int, error) {
	structType := structVal.Type()
	index := map[string]int{}
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		if !structVal.Field(i).CanSet() {
			continue
		}
		key := fieldKey(f)
		if key == "-" {
			continue
		}
		if prev, exists := index[key]; exists {
			return nil, fmt.Errorf("struct contains case-insensitive field key collision for %q: %s and %s", key, structType.Field(prev).Name, f.Name)
		}
		index[key] = i
	}
	return index, nil
}

func validateRequiredFields(structVal reflect.Value, basePath string, set map[string]Providence) error {
	structType := structVal.Type()
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		key := fieldKey(f)
		if key == "-" || !structVal.Field(i).CanSet() {
			continue
		}
		path := key
		if basePath != "" {
			path = basePath + "." + key
		}

		fv := structVal.Field(i)
		if fv.Kind() == reflect.Ptr && !fv.IsNil() {
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Struct {
			if err := validateRequiredFields(fv, path, set); err != nil {
				return err
			}
			continue
		}
		if _, ok := set[path]; !ok && isRequired(f) {
			return fmt.Errorf("missing required key: %s", path)
		}
	}
	return nil
}
