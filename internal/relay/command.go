package relay

import "strings"

// nickDirective is the keyword-plus-separator prefix that marks a rename.
// A bare "NICK" without the separator is ordinary chat text.
const nickDirective = "NICK "

type CommandKind int

const (
	// CommandNone means the line produced no event (it was empty).
	CommandNone CommandKind = iota
	CommandRename
	CommandChat
)

// Command is the classification of one framed line.
type Command struct {
	Kind CommandKind
	Text string // rename candidate or chat text
}

// Interpret classifies a framed line. A rename directive with an empty
// remainder still yields CommandRename; the roster rejects it later.
// Chat text passes through verbatim.
func Interpret(line string) Command {
	if strings.HasPrefix(line, nickDirective) {
		return Command{Kind: CommandRename, Text: TrimEnding(line[len(nickDirective):])}
	}
	if line == "" {
		return Command{Kind: CommandNone}
	}
	return Command{Kind: CommandChat, Text: line}
}
