// Package session owns a PTY-backed shell, a VT parser reading from
// it, and the read-loop goroutine that feeds one into the other.
package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/javanhut/raventerm/internal/config"
	"github.com/javanhut/raventerm/internal/grid"
	"github.com/javanhut/raventerm/internal/ptyhost"
	"github.com/javanhut/raventerm/internal/vtparser"
)

// ErrPtyClosed is returned by Wait once the shell process has exited
// or its PTY read loop has stopped.
var ErrPtyClosed = errors.New("session: pty closed")

// Session wires the Host-PTY collaborator (B→A in the component
// table: PTY output feeds the VT parser, which mutates the grid) and
// owns the response-flush path the parser uses for device reports.
type Session struct {
	Terminal *vtparser.Terminal

	pty *ptyhost.Session
	log zerolog.Logger

	readerMu sync.Mutex
	exitedMu sync.Mutex
	exited   bool
}

// New launches a shell per cfg and starts its read loop.
func New(cfg *config.SessionConfig, logger zerolog.Logger) (*Session, error) {
	pty, err := ptyhost.Start(cfg, uint16(cfg.Cols), uint16(cfg.Rows))
	if err != nil {
		return nil, err
	}

	s := &Session{
		Terminal: vtparser.NewTerminal(cfg.Cols, cfg.Rows, cfg.ScrollbackLines),
		pty:      pty,
		log:      logger,
	}
	s.Terminal.SetResponseWriter(func(b []byte) {
		if _, err := s.pty.Write(b); err != nil {
			s.log.Debug().Err(err).Msg("failed to flush parser response to pty")
		}
	})

	go s.readLoop()
	return s, nil
}

// readLoop reads PTY output and feeds it to the parser under a mutex,
// the same shape as the teacher's tab.Tab.readLoop goroutine.
func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if err != nil || n == 0 {
			s.exitedMu.Lock()
			s.exited = true
			s.exitedMu.Unlock()
			return
		}
		s.readerMu.Lock()
		s.Terminal.Process(buf[:n])
		s.readerMu.Unlock()
	}
}

// Write sends bytes to the PTY (write_pty), typically from the
// keymap/OSK encoders.
func (s *Session) Write(data []byte) error {
	_, err := s.pty.Write(data)
	return err
}

// HasExited reports whether the shell process has exited.
func (s *Session) HasExited() bool {
	s.exitedMu.Lock()
	defer s.exitedMu.Unlock()
	return s.exited || s.pty.HasExited()
}

// Wait does not block: since the read loop already observes EOF, it
// reports ErrPtyClosed once the session has exited and nil before
// that, letting callers poll without threading a channel through.
func (s *Session) Wait() error {
	if s.HasExited() {
		return ErrPtyClosed
	}
	return nil
}

// Resize propagates a terminal resize to both the parser/grid and the
// underlying PTY window size.
func (s *Session) Resize(cols, rows int) {
	s.readerMu.Lock()
	defer s.readerMu.Unlock()
	s.Terminal.Resize(cols, rows)
	if err := s.pty.Resize(uint16(cols), uint16(rows)); err != nil {
		s.log.Debug().Err(err).Msg("failed to resize pty")
	}
}

// Close terminates the shell and releases the PTY.
func (s *Session) Close() error {
	return s.pty.Close()
}

// Grid exposes the live grid for the Renderer collaborator.
func (s *Session) Grid() *grid.Grid {
	return s.Terminal.Grid
}

// WorkingDir reports the shell's last OSC-7-reported current directory,
// for an embedder that wants to label a tab/pane by it.
func (s *Session) WorkingDir() string {
	return s.Terminal.WorkingDir()
}
