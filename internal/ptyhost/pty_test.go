package ptyhost

import (
	"bufio"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/javanhut/raventerm/internal/config"
)

func TestSessionEchoRoundTrip(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh on this system")
	}

	cfg := config.DefaultSessionConfig()
	cfg.ShellPath = "/bin/sh"
	cfg.SourceRC = false

	sess, err := Start(cfg, 80, 24)
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Write([]byte("echo hello-raventerm\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(sess.Reader())
	deadline := time.Now().Add(5 * time.Second)
	found := false
	for time.Now().Before(deadline) {
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 && containsMarker(line) {
			found = true
			break
		}
		if readErr != nil {
			break
		}
	}
	require.True(t, found, "expected the shell to echo back the marker string")
}

func containsMarker(s string) bool {
	for i := 0; i+len("hello-raventerm") <= len(s); i++ {
		if s[i:i+len("hello-raventerm")] == "hello-raventerm" {
			return true
		}
	}
	return false
}
