// Package ptyhost is the Host-PTY collaborator: it owns the real
// pseudo-terminal and the shell process attached to it, exposing the
// feed_pty/write_pty byte-stream contract spec.md's core expects.
package ptyhost

import (
	"io"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/javanhut/raventerm/internal/config"
)

// Session owns a PTY-backed shell process.
type Session struct {
	cmd *exec.Cmd
	pty *os.File

	mu sync.Mutex

	exitedMu sync.Mutex
	exited   bool
}

// Start launches the configured shell attached to a new PTY of the
// given size.
func Start(cfg *config.SessionConfig, cols, rows uint16) (*Session, error) {
	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	shell := cfg.ResolveShell(lookupPasswdShell(currentUser.Username))
	shellBase := shell
	if idx := strings.LastIndex(shell, "/"); idx >= 0 {
		shellBase = shell[idx+1:]
	}

	cmd := buildShellCommand(shell, shellBase, cfg.SourceRC)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	xdgRuntimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if xdgRuntimeDir == "" {
		xdgRuntimeDir = "/run/user/" + currentUser.Uid
	}

	env := []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:" + os.Getenv("PATH"),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"RAVENTERM=1",
		"HOME=" + currentUser.HomeDir,
		"USER=" + currentUser.Username,
		"SHELL=" + shell,
		"LANG=en_US.UTF-8",
		"LC_ALL=en_US.UTF-8",
		"XDG_RUNTIME_DIR=" + xdgRuntimeDir,
	}
	if display := os.Getenv("DISPLAY"); display != "" {
		env = append(env, "DISPLAY="+display)
	}
	for k, v := range cfg.AdditionalEnv {
		env = append(env, k+"="+v)
	}

	cmd.Env = env
	cmd.Dir = currentUser.HomeDir

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, err
	}

	s := &Session{cmd: cmd, pty: ptmx}
	go func() {
		cmd.Wait()
		s.exitedMu.Lock()
		s.exited = true
		s.exitedMu.Unlock()
	}()
	return s, nil
}

func buildShellCommand(shell, shellBase string, sourceRC bool) *exec.Cmd {
	if sourceRC {
		switch shellBase {
		case "bash":
			return exec.Command(shell, "-i")
		case "zsh", "fish":
			return exec.Command(shell, "-i")
		default:
			return exec.Command(shell, "-i")
		}
	}
	switch shellBase {
	case "bash":
		return exec.Command(shell, "--noprofile", "--norc", "-i")
	case "zsh":
		return exec.Command(shell, "--no-rcs", "-i")
	case "fish":
		return exec.Command(shell, "--no-config", "-i")
	default:
		return exec.Command(shell, "-i")
	}
}

// lookupPasswdShell reads a user's login shell from /etc/passwd,
// the only place POSIX systems record it outside getpwnam(3).
func lookupPasswdShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// Read reads raw bytes from the PTY master.
func (s *Session) Read(buf []byte) (int, error) {
	return s.pty.Read(buf)
}

// Write writes bytes to the PTY master (write_pty).
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty.Write(data)
}

// Resize updates the PTY's window size.
func (s *Session) Resize(cols, rows uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pty.Setsize(s.pty, &pty.Winsize{Cols: cols, Rows: rows})
}

// HasExited reports whether the shell process has terminated.
func (s *Session) HasExited() bool {
	s.exitedMu.Lock()
	defer s.exitedMu.Unlock()
	return s.exited
}

// Close terminates the shell process and releases the PTY.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	return s.pty.Close()
}

// Reader exposes the PTY master as an io.Reader.
func (s *Session) Reader() io.Reader { return s.pty }

// Writer exposes the PTY master as an io.Writer.
func (s *Session) Writer() io.Writer { return s.pty }
