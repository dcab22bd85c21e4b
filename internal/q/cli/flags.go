package cli

import (
	"fmt"
	"sort"
	"strconv"
)

// flagValue is the typed storage behind one flag.
type flagValue interface {
	set(raw string) error
	typeName() string // "" for bools, which take no value
}

type boolValue struct{ p *bool }

func (v boolValue) set(raw string) error {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return err
	}
	*v.p = b
	return nil
}

func (v boolValue) typeName() string { return "" }

type stringValue struct{ p *string }

func (v stringValue) set(raw string) error { *v.p = raw; return nil }
func (v stringValue) typeName() string     { return "string" }

type intValue struct{ p *int }

func (v intValue) set(raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*v.p = n
	return nil
}

func (v intValue) typeName() string { return "int" }

// FlagSet is a typed flag registry for a command.
type FlagSet struct {
	byLong  map[string]*flagDef
	byShort map[rune]*flagDef
}

type flagDef struct {
	name      string
	shorthand rune
	usage     string
	value     flagValue
	changed   bool // set on the command line
}

func newFlagSet() *FlagSet {
	return &FlagSet{byLong: map[string]*flagDef{}, byShort: map[rune]*flagDef{}}
}

// Bool defines a bool flag. A bare "--name" sets it to true.
func (fs *FlagSet) Bool(name string, shorthand rune, def bool, usage string) *bool {
	p := &def
	fs.add(name, shorthand, usage, boolValue{p})
	return p
}

// String defines a string flag.
func (fs *FlagSet) String(name string, shorthand rune, def string, usage string) *string {
	p := &def
	fs.add(name, shorthand, usage, stringValue{p})
	return p
}

// Int defines an int flag.
func (fs *FlagSet) Int(name string, shorthand rune, def int, usage string) *int {
	p := &def
	fs.add(name, shorthand, usage, intValue{p})
	return p
}

// Changed reports whether the flag called name was given on the command line.
func (fs *FlagSet) Changed(name string) bool {
	def := fs.byLong[name]
	return def != nil && def.changed
}

func (fs *FlagSet) add(name string, shorthand rune, usage string, value flagValue) {
	if name == "" {
		panic("cli: flag name must be non-empty")
	}
	if _, ok := fs.byLong[name]; ok {
		panic("cli: duplicate flag: --" + name)
	}
	def := &flagDef{name: name, shorthand: shorthand, usage: usage, value: value}
	fs.byLong[name] = def
	if shorthand != 0 {
		if _, ok := fs.byShort[shorthand]; ok {
			panic(fmt.Sprintf("cli: duplicate shorthand flag: -%c", shorthand))
		}
		fs.byShort[shorthand] = def
	}
}

// sorted returns the flags ordered by name.
func (fs *FlagSet) sorted() []*flagDef {
	defs := make([]*flagDef, 0, len(fs.byLong))
	for _, def := range fs.byLong {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].name < defs[j].name })
	return defs
}

// lookup finds the flag a token names: by long name after "--" or when the name is longer than one rune, otherwise by shorthand.
func (fs *FlagSet) lookup(name string, long bool) *flagDef {
	if long || len([]rune(name)) > 1 {
		return fs.byLong[name]
	}
	if name == "" {
		return nil
	}
	return fs.byShort[[]rune(name)[0]]
}

// set assigns a flag from token. value is the inline "=value" part, if any; next is the following argv token, if any. It reports whether
// next was consumed.
func (fs *FlagSet) set(token string, def *flagDef, value, next *string) (bool, error) {
	if def == nil {
		return false, usageErrorf("unknown flag: %s", token)
	}

	consumed := false
	raw := "true"
	switch {
	case value != nil:
		raw = *value
	case def.value.typeName() == "":
		// A bool flag only takes the next token when it reads as a bool.
		if next != nil {
			if _, err := strconv.ParseBool(*next); err == nil {
				raw, consumed = *next, true
			}
		}
	case next == nil || *next == "--":
		return false, usageErrorf("flag needs a value: %s", token)
	default:
		raw, consumed = *next, true
	}

	if err := def.value.set(raw); err != nil {
		return false, usageErrorf("invalid value for %s: %v", displayFlag(def), err)
	}
	def.changed = true
	return consumed, nil
}

func displayFlag(def *flagDef) string {
	if def.shorthand != 0 {
		return fmt.Sprintf("-%c/--%s", def.shorthand, def.name)
	}
	return "--" + def.name
}
