package winprims

import "strings"

// BuildCommandLine flattens an argv vector into the single command-line
// string CreateProcess requires.
//
// An argument is wrapped in double quotes when it is empty or contains a
// space or tab; all other arguments are passed through untouched. No further
// escaping is performed: arguments containing literal double-quote characters
// are not escaped and may be parsed incorrectly by the child. This matches
// the quoting the engine has always used and keeps round-trips with its
// existing call sites byte-identical.
func BuildCommandLine(argv []string) string {
	var b strings.Builder
	for i, arg := range argv {
		if i > 0 {
			b.WriteByte(' ')
		}
		if needsQuotes(arg) {
			b.WriteByte('"')
			b.WriteString(arg)
			b.WriteByte('"')
		} else {
			b.WriteString(arg)
		}
	}
	return b.String()
}

func needsQuotes(arg string) bool {
	return arg == "" || strings.ContainsAny(arg, " \t")
}
