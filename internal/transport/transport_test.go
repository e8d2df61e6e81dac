package transport

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

func mustTransport(t *testing.T) *Transport {
	t.Helper()
	tr, err := Listen("127.0.0.1:0", zap.NewNop())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestPollReceivesDatagram(t *testing.T) {
	server := mustTransport(t)
	client, err := net.ListenUDP("udp", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	serverAddr := server.Addr().(*net.UDPAddr)
	if _, err := client.WriteToUDP([]byte("hello"), serverAddr); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	var frames []Frame
	for time.Now().Before(deadline) && len(frames) == 0 {
		frames = server.Poll()
		if len(frames) == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if string(frames[0].Payload) != "hello" {
		t.Errorf("payload = %q", frames[0].Payload)
	}
}

func TestPollNonBlockingWhenEmpty(t *testing.T) {
	server := mustTransport(t)
	start := time.Now()
	frames := server.Poll()
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("Poll blocked for %v with nothing queued", elapsed)
	}
	if len(frames) != 0 {
		t.Fatalf("got %d frames, want 0", len(frames))
	}
}

func TestActiveAndStalePeers(t *testing.T) {
	server := mustTransport(t)
	client, _ := net.ListenUDP("udp", nil)
	defer client.Close()

	serverAddr := server.Addr().(*net.UDPAddr)
	client.WriteToUDP([]byte("x"), serverAddr)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(server.Poll()) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if active := server.ActivePeers(10 * time.Second); len(active) != 1 {
		t.Fatalf("ActivePeers = %d, want 1", len(active))
	}
	if stale := server.StalePeers(10 * time.Second); len(stale) != 0 {
		t.Fatalf("StalePeers = %d, want 0 (not yet idle)", len(stale))
	}
	if stale := server.StalePeers(0); len(stale) != 1 {
		t.Fatalf("StalePeers with zero threshold = %d, want 1", len(stale))
	}
	if active := server.ActivePeers(10 * time.Second); len(active) != 0 {
		t.Fatalf("ActivePeers after StalePeers eviction = %d, want 0", len(active))
	}
}
