package relay

import (
	"log/slog"
	"time"
)

// Relay is the dispatcher: one goroutine owns the roster and performs
// every mutation and every broadcast, so a rename or an eviction can
// never be observed mid-update.
type Relay struct {
	events chan Event
	stopCh chan struct{}
	doneCh chan struct{}
	logger *slog.Logger
}

func NewRelay(buffer int, logger *slog.Logger) *Relay {
	if buffer <= 0 {
		buffer = 128
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		events: make(chan Event, buffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: logger,
	}
}

func (r *Relay) Events() chan<- Event {
	return r.events
}

// Stop signals the Run loop to exit.
func (r *Relay) Stop() {
	close(r.stopCh)
}

// Wait blocks until the Run loop has completely finished.
func (r *Relay) Wait() {
	<-r.doneCh
}

func (r *Relay) Run() {
	defer close(r.doneCh)
	// Single-writer ownership: the roster is only accessed in this goroutine.
	var ros roster

	for {
		select {
		case ev := <-r.events:
			start := time.Now()

			switch ev.Type {
			case EventAdmit:
				r.handleAdmit(&ros, ev)
				ConnectedClients.Set(float64(ros.count))
			case EventEvict:
				r.handleEvict(&ros, ev)
				ConnectedClients.Set(float64(ros.count))
			case EventRename:
				r.handleRename(&ros, ev)
			case EventChat:
				r.handleChat(&ros, ev)
			case EventOperator:
				r.handleOperator(&ros, ev)
			}

			EventsTotal.WithLabelValues(ev.Type.String()).Inc()
			EventProcessingDuration.WithLabelValues(ev.Type.String()).Observe(time.Since(start).Seconds())
		case <-r.stopCh:
			r.shutdown(&ros)
			return
		}
	}
}

func (r *Relay) handleAdmit(ros *roster, ev Event) {
	err := ros.admit(ev.Client)
	if err != nil {
		r.logger.Info("admission rejected", "reason", err)
	} else {
		r.logger.Info("client admitted",
			"id", ev.Client.ID, "slot", ev.Client.Slot, "name", ev.Client.Name)
	}
	if ev.Reply != nil {
		ev.Reply <- err
		close(ev.Reply)
	}
}

func (r *Relay) handleEvict(ros *roster, ev Event) {
	if ros.evict(ev.Client) {
		r.logger.Info("client evicted",
			"id", ev.Client.ID, "slot", ev.Client.Slot, "name", ev.Client.Name)
	}
}

func (r *Relay) handleRename(ros *roster, ev Event) {
	if ev.Client == nil || ros.slots[ev.Client.Slot] != ev.Client {
		return
	}
	old := ev.Client.Name
	name, err := ros.rename(ev.Client, ev.Text)
	if err != nil {
		// Rejections notify only the requester; no broadcast either way.
		switch err {
		case ErrEmptyName:
			sendLine(ev.Client, "Name cannot be empty")
		case ErrInvalidName:
			sendLine(ev.Client, "Invalid name")
		}
		return
	}
	r.logger.Info("client renamed", "id", ev.Client.ID, "old", old, "new", name)
}

func (r *Relay) handleChat(ros *roster, ev Event) {
	if ev.Client == nil || ros.slots[ev.Client.Slot] != ev.Client {
		return
	}
	line := "[" + ev.Client.Name + "] " + ev.Text
	r.logger.Info("chat", "line", line)
	r.broadcast(ros, line, ev.Client)
}

func (r *Relay) handleOperator(ros *roster, ev Event) {
	r.broadcast(ros, "[server] "+ev.Text, nil)
}

// broadcast fans line out to every admitted client except exclude. A
// failed delivery is counted and skipped; it never aborts the batch and
// never evicts the recipient here. Eviction stays with that
// connection's own reader.
func (r *Relay) broadcast(ros *roster, line string, exclude *Client) {
	for _, c := range ros.snapshot() {
		if c == exclude {
			continue
		}
		sendLine(c, line)
	}
}

func (r *Relay) shutdown(ros *roster) {
	for _, c := range ros.snapshot() {
		ros.evict(c)
	}
	ConnectedClients.Set(0)
}

func sendLine(c *Client, line string) {
	// Non-blocking send prevents slow/disconnected clients from blocking
	// the relay. Dropped lines are best-effort losses.
	select {
	case c.Out <- line:
	default:
		BroadcastDrops.Inc()
	}
}
