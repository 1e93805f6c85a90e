package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("SC_INT", "42")
	t.Setenv("SC_BAD_INT", "x")
	t.Setenv("SC_BOOL", "off")
	t.Setenv("SC_MS", "250")
	t.Setenv("SC_LIST", " a, ,b ")

	if got := Int("SC_INT", 1); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	if got := Int("SC_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	if got := Bool("SC_BOOL", true); got {
		t.Fatalf("Bool: want=false got=%v", got)
	}
	if got := Bool("SC_MISSING", true); !got {
		t.Fatalf("Bool default: want=true got=%v", got)
	}
	if got := Millis("SC_MS", time.Second); got != 250*time.Millisecond {
		t.Fatalf("Millis: want=250ms got=%v", got)
	}
	if got := List("SC_LIST", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: want=[a b] got=%v", got)
	}
	if got := String("SC_MISSING", "def"); got != "def" {
		t.Fatalf("String: want=def got=%s", got)
	}
}
