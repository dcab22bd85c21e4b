package cli

import "sort"

// RunFunc handles a command once its flags and positional args are parsed.
type RunFunc func(c *Context) error

// ArgsFunc checks positional args before Run. Mistakes should be reported as a UsageError.
type ArgsFunc func(args []string) error

// Command is a node in a command tree. A command without Run only groups its subcommands.
type Command struct {
	Name    string // token that selects the command, ex: "merge"
	Short   string // one-line summary, shown in the parent's command list
	Long    string
	Example string
	Usage   string // positional part of the usage line, ex: "CURRENT BASE OTHER"; "[args]" if empty

	Args ArgsFunc
	Run  RunFunc

	parent *Command
	subs   map[string]*Command
	flags  *FlagSet
}

// AddCommand registers subcommands of c. It panics if one is nil or unnamed, already belongs to a tree, or reuses a name.
func (c *Command) AddCommand(subs ...*Command) {
	if c.subs == nil {
		c.subs = make(map[string]*Command, len(subs))
	}
	for _, sub := range subs {
		if sub == nil || sub.Name == "" {
			panic("cli: AddCommand needs a named command")
		}
		if sub.parent != nil {
			panic("cli: command " + sub.Name + " is already attached")
		}
		if _, taken := c.subs[sub.Name]; taken {
			panic("cli: duplicate command " + sub.Name)
		}
		sub.parent = c
		c.subs[sub.Name] = sub
	}
}

// Subcommands returns c's subcommands ordered by name.
func (c *Command) Subcommands() []*Command {
	subs := make([]*Command, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs
}

// Flags returns the flags c accepts. Flags belong to one command; subcommands do not inherit them.
func (c *Command) Flags() *FlagSet {
	if c.flags == nil {
		c.flags = newFlagSet()
	}
	return c.flags
}

// FullName is the chain of names from the root to c, ex: "textmerge merge".
func (c *Command) FullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.FullName() + " " + c.Name
}
