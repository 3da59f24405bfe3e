package discovery

import (
	"net"
	"testing"
	"time"
)

func TestFakeBackendDeliversAfterDiscover(t *testing.T) {
	want := Reply{DeviceID: "test-device", IPAddr: net.ParseIP("192.168.10.10"), Port: 7777}
	b := NewFakeBackend(10*time.Millisecond, want)

	if err := b.Discover(); err != nil {
		t.Fatalf("Discover: %v", err)
	}

	got, err := b.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got.DeviceID != want.DeviceID || !got.IPAddr.Equal(want.IPAddr) || got.Port != want.Port {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestFakeBackendPollBlocksWithoutDiscover(t *testing.T) {
	b := NewFakeBackend(0, Reply{DeviceID: "dev"})

	done := make(chan struct{})
	go func() {
		b.Poll()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Poll returned before Discover was called")
	case <-time.After(50 * time.Millisecond):
	}

	b.Discover()
	<-done
}
