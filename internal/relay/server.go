package relay

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"sync"
)

// quitDirective stops the relay when typed on the operator console.
const quitDirective = "/quit"

type Server struct {
	addr     string
	console  io.Reader // operator input; nil disables the console
	logger   *slog.Logger
	relay    *Relay
	listener net.Listener

	quitCh   chan struct{}
	quitOnce sync.Once
}

// NewServer wires a relay to a TCP listen address and an operator
// console stream. Pass nil for console to run without operator input.
func NewServer(addr string, console io.Reader, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		console: console,
		logger:  logger,
		relay:   NewRelay(128, logger),
		quitCh:  make(chan struct{}),
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.relay.Run()
	go s.acceptLoop(ln)
	if s.console != nil {
		go s.consoleLoop(s.console)
	}

	s.logger.Info("relay started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Done is closed when the operator requests shutdown, via the quit
// directive or console end-of-stream.
func (s *Server) Done() <-chan struct{} {
	return s.quitCh
}

// Stop tears the relay down, evicting every remaining client, then
// releases the listener. The relay only stops between events, never
// mid-broadcast.
func (s *Server) Stop() {
	s.logger.Info("shutting down")

	s.relay.Stop()
	s.relay.Wait()

	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed, normal shutdown.
			return
		}

		s.logger.Info("client connected", "addr", conn.RemoteAddr().String())

		c := &Client{
			Conn: conn,
			Out:  make(chan string, 32),
		}
		go HandleSession(c, s.relay.Events())
	}
}

func (s *Server) consoleLoop(console io.Reader) {
	reader := bufio.NewReader(console)
	for {
		line, err := ReadFrame(reader)
		if err != nil {
			s.logger.Info("console closed")
			s.requestQuit()
			return
		}
		if line == quitDirective {
			s.requestQuit()
			return
		}
		if line == "" {
			continue
		}
		s.relay.events <- Event{Type: EventOperator, Text: line}
	}
}

func (s *Server) requestQuit() {
	s.quitOnce.Do(func() { close(s.quitCh) })
}
