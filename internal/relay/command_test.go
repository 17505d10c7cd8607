package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpret(t *testing.T) {
	cases := []struct {
		line string
		want Command
	}{
		{"hello", Command{Kind: CommandChat, Text: "hello"}},
		{"NICK carol", Command{Kind: CommandRename, Text: "carol"}},
		{"NICK a[b]c", Command{Kind: CommandRename, Text: "a[b]c"}},
		// The directive with an empty remainder is still a rename
		// request; the roster rejects the empty candidate later.
		{"NICK ", Command{Kind: CommandRename, Text: ""}},
		// Without the separator it is plain chat.
		{"NICK", Command{Kind: CommandChat, Text: "NICK"}},
		{"NICKname here", Command{Kind: CommandChat, Text: "NICKname here"}},
		{"", Command{Kind: CommandNone}},
		// Chat text passes through verbatim, brackets included.
		{"[sneaky] text", Command{Kind: CommandChat, Text: "[sneaky] text"}},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Interpret(tc.line), "line %q", tc.line)
	}
}
