package relay

import "bufio"

// HandleSession runs the reader side of one connection: admission
// handshake, then the frame-interpret loop. The relay goroutine owns the
// connection from admission on, so eviction is signalled, never done
// here; a rejected connection never enters the roster and is closed
// directly.
func HandleSession(c *Client, events chan<- Event) {
	reply := make(chan error, 1)
	events <- Event{Type: EventAdmit, Client: c, Reply: reply}
	if err := <-reply; err != nil {
		_, _ = c.Conn.Write([]byte(serverFullNotice))
		_ = c.Conn.Close()
		return
	}

	StartOutboundWriter(c.Conn, c.Out)

	reader := bufio.NewReaderSize(c.Conn, MaxLineSize)
	for {
		// ReadFrame bounds the line at MaxLineSize; an oversized line is
		// a read failure like any other and evicts the sender.
		line, err := ReadFrame(reader)
		if err != nil {
			events <- Event{Type: EventEvict, Client: c}
			return
		}

		cmd := Interpret(line)
		switch cmd.Kind {
		case CommandNone:
			// Empty line, silently dropped.
		case CommandRename:
			events <- Event{Type: EventRename, Client: c, Text: cmd.Text}
		case CommandChat:
			events <- Event{Type: EventChat, Client: c, Text: cmd.Text}
		}
	}
}
