package dispatch

import "strings"

// Query is a parsed input line. Command is the first whitespace-delimited
// token, lower-cased; Argument is the remainder with surrounding
// whitespace trimmed. Blank input yields an empty Command.
type Query struct {
	Raw      string
	Command  string
	Argument string
}

// ParseQuery splits raw input into command and argument. Lookup later is
// exact-match only, so normalization happens here.
func ParseQuery(raw string) Query {
	q := Query{Raw: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return q
	}

	fields := strings.Fields(trimmed)
	q.Command = strings.ToLower(fields[0])
	q.Argument = strings.TrimSpace(trimmed[len(fields[0]):])

	return q
}
