package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

func writeHelp(w io.Writer, cmd *Command) {
	name := cmd.FullName()
	if cmd.Short != "" {
		fmt.Fprintf(w, "%s - %s\n", name, cmd.Short)
	} else {
		fmt.Fprintln(w, name)
	}
	if cmd.Long != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimRight(cmd.Long, "\n"))
	}

	fmt.Fprintf(w, "\nUsage:\n  %s\n", usageLine(cmd))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if subs := cmd.Subcommands(); len(subs) > 0 {
		fmt.Fprintln(tw, "\nCommands:")
		for _, sub := range subs {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Short)
		}
	}

	if flags := cmd.Flags().sorted(); len(flags) > 0 {
		fmt.Fprintln(tw, "\nFlags:")
		for _, def := range flags {
			fmt.Fprintln(tw, flagHelpLine(def))
		}
	}
	tw.Flush()

	if cmd.Example != "" {
		fmt.Fprintln(w, "\nExample:")
		for _, line := range strings.Split(strings.TrimRight(cmd.Example, "\n"), "\n") {
			if line == "" {
				fmt.Fprintln(w)
			} else {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
}

func usageLine(cmd *Command) string {
	segments := []string{cmd.FullName()}
	if len(cmd.Flags().byLong) > 0 {
		segments = append(segments, "[flags]")
	}
	if len(cmd.subs) > 0 {
		if cmd.Run == nil {
			segments = append(segments, "<command>")
		} else {
			segments = append(segments, "[command]")
		}
	}
	if cmd.Run != nil {
		if cmd.Usage != "" {
			segments = append(segments, cmd.Usage)
		} else {
			segments = append(segments, "[args]")
		}
	}
	return strings.Join(segments, " ")
}

func flagHelpLine(def *flagDef) string {
	names := "    --" + def.name
	if def.shorthand != 0 {
		names = fmt.Sprintf("-%c, --%s", def.shorthand, def.name)
	}
	if t := def.value.typeName(); t != "" {
		names += " <" + t + ">"
	}
	return fmt.Sprintf("  %s\t%s", names, strings.TrimSpace(def.usage))
}
