package cli

import "fmt"

// NoArgs rejects any positional args.
func NoArgs(args []string) error {
	return RangeArgs(0, 0)(args)
}

// ExactArgs requires exactly n positional args.
func ExactArgs(n int) ArgsFunc {
	return RangeArgs(n, n)
}

// RangeArgs requires between min and max positional args, inclusive.
func RangeArgs(min, max int) ArgsFunc {
	return func(args []string) error {
		if len(args) >= min && len(args) <= max {
			return nil
		}
		want := pluralArgs(min)
		switch {
		case max == 0:
			want = "no args"
		case min != max:
			want = fmt.Sprintf("%d-%s", min, pluralArgs(max))
		}
		return usageErrorf("expected %s, got %d", want, len(args))
	}
}

func pluralArgs(n int) string {
	if n == 1 {
		return "1 arg"
	}
	return fmt.Sprintf("%d args", n)
}
