// Package flagx lets several independent parsers share os.Args: each one
// picks out only the flags it owns and ignores the rest.
package flagx

import (
	"flag"
	"strings"
)

// configFlags are the spellings accepted for the JSON config file path.
var configFlags = []string{"-c", "-config", "--config"}

// FilterArgs returns the subset of args that belongs to allowedFlags, keeping
// values that follow a flag as a separate argument. Both "-f value" and
// "-f=value" forms are recognised. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)

		// a following token that is not itself a flag is this flag's value
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config file path given with -c, -config or
// --config. Other arguments are ignored; an empty string means no file.
// When the flag is repeated the last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, configFlags))

	return path
}
