package dispatch

import "testing"

func TestParseQuery(t *testing.T) {
	tc := []struct {
		name     string
		raw      string
		command  string
		argument string
	}{
		{"Blank", "", "", ""},
		{"WhitespaceOnly", "   ", "", ""},
		{"CommandOnly", "play", "play", ""},
		{"UppercaseCommand", "PLAY", "play", ""},
		{"CommandWithArgument", "artist miles davis", "artist", "miles davis"},
		{"SurroundingWhitespace", "  track so what  ", "track", "so what"},
		{"InternalSpacingPreserved", "track so  what", "track", "so  what"},
		{"ArgumentCasePreserved", "album Kind Of Blue", "album", "Kind Of Blue"},
		{"TabSeparated", "vol\t40", "vol", "40"},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			q := ParseQuery(c.raw)

			if q.Raw != c.raw {
				t.Errorf("expected raw %q, got %q", c.raw, q.Raw)
			}
			if q.Command != c.command {
				t.Errorf("expected command %q, got %q", c.command, q.Command)
			}
			if q.Argument != c.argument {
				t.Errorf("expected argument %q, got %q", c.argument, q.Argument)
			}
		})
	}
}
