package relay

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TrimEnding strips trailing CR/LF characters from a framed line.
func TrimEnding(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// ReadFrame reads one newline-delimited line from r and returns it with
// the line ending stripped. A final line without a newline is still
// returned; the next call reports io.EOF. The line is assembled from
// buffer-sized chunks and never grows past MaxLineSize: once the limit
// is crossed ReadFrame stops reading and returns ErrLineTooLong, so a
// peer streaming bytes with no newline cannot grow server memory.
func ReadFrame(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if err == io.EOF {
				if b.Len() > 0 {
					return TrimEnding(b.String()), nil
				}
				return "", io.EOF
			}
			return "", fmt.Errorf("read frame: %w", err)
		}
		if b.Len()+len(chunk) > MaxLineSize {
			return "", ErrLineTooLong
		}
		b.Write(chunk)
		if !isPrefix {
			return TrimEnding(b.String()), nil
		}
	}
}
