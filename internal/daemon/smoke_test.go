package daemon

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestLiveDaemonConnection connects to a running capture daemon and lists
// devices. Skipped if the daemon socket doesn't exist.
func TestLiveDaemonConnection(t *testing.T) {
	sockPath := SocketPath()
	if _, err := os.Stat(sockPath); os.IsNotExist(err) {
		t.Skip("daemon not running (no socket at", sockPath, ")")
	}

	client, err := Connect(sockPath)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	devices, err := client.Devices(ctx)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	t.Logf("devices: %v", devices)
}
