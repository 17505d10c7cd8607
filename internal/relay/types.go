package relay

import "net"

// Protocol limits. Fixed at compile time, not runtime-reconfigurable.
const (
	// MaxClients bounds the number of simultaneously admitted connections.
	// The next connection past the bound is rejected with serverFullNotice.
	MaxClients = 64

	// MaxLineSize caps a single inbound line. Longer lines fail the read
	// and evict the sender.
	MaxLineSize = 2048

	// MaxNameLen caps a display name after sanitization.
	MaxNameLen = 32

	// DefaultAddr is the listen address used when none is given.
	DefaultAddr = ":12345"
)

const serverFullNotice = "Server full.\n"

// Client is one admitted connection. Slot and Name belong to the relay
// goroutine; readers and writers must not touch them.
type Client struct {
	ID   int64
	Slot int
	Conn net.Conn
	Name string
	Out  chan string // outbound lines drained by the writer goroutine
}

type EventType int

const (
	EventAdmit EventType = iota
	EventEvict
	EventRename
	EventChat
	EventOperator
)

func (t EventType) String() string {
	switch t {
	case EventAdmit:
		return "admit"
	case EventEvict:
		return "evict"
	case EventRename:
		return "rename"
	case EventChat:
		return "chat"
	case EventOperator:
		return "operator"
	}
	return "unknown"
}

// Event is one unit of work for the relay goroutine. Text carries the
// chat line, the rename candidate or the operator line depending on Type.
type Event struct {
	Type   EventType
	Client *Client
	Text   string
	Reply  chan error // used by admit to ack success/failure
}

var (
	ErrServerFull  = errorString("server_full")
	ErrEmptyName   = errorString("empty_name")
	ErrInvalidName = errorString("invalid_name")
	ErrLineTooLong = errorString("line_too_long")
)

type errorString string

func (e errorString) Error() string { return string(e) }
