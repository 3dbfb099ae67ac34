package app

import (
	"testing"

	"github.com/veikko/skystrike/internal/domain"
)

func TestDirectoryBindLookupUnbind(t *testing.T) {
	d := NewDirectory()

	if _, ok := d.Lookup("s1"); ok {
		t.Fatal("lookup on empty directory succeeded")
	}
	if err := d.Bind("s1", "ROOM01"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	code, ok := d.Lookup("s1")
	if !ok || code != "ROOM01" {
		t.Fatalf("lookup = %q, %v", code, ok)
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d", d.Len())
	}

	d.Unbind("s1")
	if _, ok := d.Lookup("s1"); ok {
		t.Fatal("lookup succeeded after unbind")
	}
	if d.Len() != 0 {
		t.Fatalf("Len = %d after unbind", d.Len())
	}
}

func TestDirectoryRebindIsAnError(t *testing.T) {
	d := NewDirectory()
	if err := d.Bind("s1", "ROOM01"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := d.Bind("s1", "ROOM02"); err != domain.ErrSessionBound {
		t.Fatalf("expected ErrSessionBound, got %v", err)
	}
	// Failed rebind must not clobber the original entry.
	if code, _ := d.Lookup("s1"); code != "ROOM01" {
		t.Fatalf("binding clobbered: %s", code)
	}

	d.Unbind("s1")
	if err := d.Bind("s1", "ROOM02"); err != nil {
		t.Fatalf("bind after unbind: %v", err)
	}
}
