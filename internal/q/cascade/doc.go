// Package cascade loads layered configuration into Go structs from multiple sources with predictable precedence.
//
// A Loader holds sources registered from lowest to highest priority with the With* methods; StrictlyLoad applies them in order to a
// destination struct. The zero value of Loader is ready to use; New exists for fluent chaining.
//
// Sources
//   - Defaults from a map[string]any whose keys may use dot-notation to denote nesting.
//   - JSON and TOML files read at load time, registered by path (WithJSONFile, WithTOMLFile) or found by searching upward from a directory
//     (WithNearestFile).
//   - Environment variables mapped to configuration keys (WithEnv).
//
// Keys are case-insensitive and dot-separated for nesting. Fields are matched by `cascade` tag name, then `json` tag name, then field name.
// Unknown keys are ignored. StrictlyLoadWithReport also returns the Providence of every field that was set, so callers can show where each
// effective value came from.
//
// Example
//
//	type Config struct {
//	    Host string `cascade:"host,required"`
//	    Port int
//	}
//
//	var cfg Config
//	err := New().
//	    WithDefaults(map[string]any{"host": "localhost", "port": 8080}).
//	    WithNearestFile("", ".app/config.toml", ".app/config.json").
//	    WithEnv(map[string]string{"host": "APP_HOST", "port": "APP_PORT"}).
//	    StrictlyLoad(&cfg)
package cascade
