// Package flagx lets several flag parsers share one command line: each
// picks out only the flags it owns before calling flag.FlagSet.Parse.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Pick returns the arguments belonging to the named flags, in order. Names
// are given without dashes and match both -name and --name. Both "-n v" and
// "-n=v" forms are understood; a following token that starts with a dash is
// never taken as a value.
func Pick(args []string, names ...string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, _, hasValue := strings.Cut(strings.TrimLeft(args[i], "-"), "=")
		if !strings.HasPrefix(args[i], "-") || !owned[name] {
			continue
		}

		out = append(out, args[i])
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath returns the value of -c / -config in args, or "".
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(Pick(args, "c", "config"))

	return path
}
