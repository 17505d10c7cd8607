package relay

import (
	"bufio"
	"net"
)

// StartOutboundWriter drains out onto conn, one line per message. The
// goroutine exits when out is closed by eviction or when a write fails;
// the failing connection is not evicted here, its own next read is.
func StartOutboundWriter(conn net.Conn, out <-chan string) {
	go func() {
		w := bufio.NewWriter(conn)
		for msg := range out {
			if _, err := w.WriteString(msg + "\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}()
}
