package relay

import (
	"strconv"
	"strings"
	"unicode"
)

// roster is the fixed-capacity slot table mapping admitted connections to
// display names. It is owned by the relay goroutine; all methods assume
// single-goroutine access.
type roster struct {
	slots  [MaxClients]*Client
	nextID int64
	count  int
}

// admit places c in the first free slot, assigns its identity and the
// default placeholder name. Returns ErrServerFull when no slot is free;
// the caller must notify and close the connection without admitting it.
func (r *roster) admit(c *Client) error {
	slot := -1
	for i := range r.slots {
		if r.slots[i] == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return ErrServerFull
	}

	r.nextID++
	c.ID = r.nextID
	c.Slot = slot
	// anon<id> is unique by construction, so admission never needs a
	// name-collision check.
	c.Name = "anon" + strconv.FormatInt(c.ID, 10)
	r.slots[slot] = c
	r.count++
	return nil
}

// evict clears c's slot, closes its outbound channel and its connection.
// A second evict for the same client is a no-op, so the close happens
// exactly once.
func (r *roster) evict(c *Client) bool {
	if c == nil || c.Slot < 0 || c.Slot >= MaxClients || r.slots[c.Slot] != c {
		return false
	}
	r.slots[c.Slot] = nil
	r.count--
	close(c.Out)
	_ = c.Conn.Close()
	return true
}

// rename sanitizes candidate and stores it as c's display name. Rejects
// an empty candidate and a candidate that sanitizes to nothing; the
// stored name is untouched on rejection. Collisions with other clients'
// names are permitted.
func (r *roster) rename(c *Client, candidate string) (string, error) {
	if candidate == "" {
		return "", ErrEmptyName
	}
	clean := sanitizeName(candidate)
	if clean == "" {
		return "", ErrInvalidName
	}
	c.Name = clean
	return clean, nil
}

// snapshot returns the admitted clients in slot order.
func (r *roster) snapshot() []*Client {
	out := make([]*Client, 0, r.count)
	for _, c := range r.slots {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// sanitizeName removes non-printable runes and the reserved framing
// brackets, then truncates to MaxNameLen runes.
func sanitizeName(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == MaxNameLen {
			break
		}
		if !unicode.IsPrint(r) || r == '[' || r == ']' {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
