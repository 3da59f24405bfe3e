package devicebus

import (
	"net"
	"testing"
)

func TestTableRegisterDedupsByID(t *testing.T) {
	table := NewTable()
	d := NewDevice("dev-1", net.ParseIP("192.168.10.10"))

	if !table.Register(d) {
		t.Fatalf("expected first Register to insert")
	}
	if table.Register(d) {
		t.Fatalf("expected second Register of the same id to be a no-op")
	}

	got, ok := table.Get("dev-1")
	if !ok || got.ID != "dev-1" {
		t.Fatalf("expected to find dev-1 in the table")
	}
}

func TestTableLookupByAddr(t *testing.T) {
	table := NewTable()
	addr := net.ParseIP("192.168.10.10")
	table.Register(NewDevice("dev-1", addr))

	got, ok := table.LookupByAddr(addr)
	if !ok || got.ID != "dev-1" {
		t.Fatalf("expected to find device by address")
	}

	_, ok = table.LookupByAddr(net.ParseIP("10.0.0.1"))
	if ok {
		t.Fatalf("expected no match for unknown address")
	}
}

func TestDeviceCloneIsIndependent(t *testing.T) {
	name := "Living Room"
	vol := 42
	d := Device{ID: "dev-1", Name: &name, Volume: &vol}

	clone := d.Clone()
	*clone.Name = "changed"
	*clone.Volume = 0

	if *d.Name != "Living Room" || *d.Volume != 42 {
		t.Fatalf("mutating clone affected original: name=%q volume=%d", *d.Name, *d.Volume)
	}
}
