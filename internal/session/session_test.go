package session

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/raventerm/internal/config"
	"github.com/javanhut/raventerm/internal/grid"
)

func TestSessionRunsShellAndDrivesGrid(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh on this system")
	}

	cfg := config.DefaultSessionConfig()
	cfg.ShellPath = "/bin/sh"
	cfg.SourceRC = false
	cfg.Cols, cfg.Rows = 40, 10

	s, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write([]byte("echo raventerm-ok\n")))

	deadline := time.Now().Add(5 * time.Second)
	found := false
	for time.Now().Before(deadline) {
		for row := 0; row < cfg.Rows; row++ {
			line := s.Grid().GetViewportLine(row)
			if lineContains(line, "raventerm-ok") {
				found = true
			}
		}
		if found {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.True(t, found, "expected the echoed marker to appear on the grid")
}

func lineContains(cells []grid.Cell, needle string) bool {
	var sb []rune
	for _, c := range cells {
		sb = append(sb, c.Ch)
	}
	s := string(sb)
	for i := 0; i+len(needle) <= len(s); i++ {
		if s[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
