package config

import (
	"testing"
	"time"

	"courtside/internal/platform/testkit"
)

func TestPrefixChaining(t *testing.T) {
	t.Setenv("CORE_TRACKER_PLAYER", "Caitlin Clark")

	c := New().Prefix("CORE_").Prefix("TRACKER_")
	if got := c.MustString("PLAYER"); got != "Caitlin Clark" {
		t.Fatalf("MustString = %q", got)
	}
}

func TestMustStringPanicsWhenMissing(t *testing.T) {
	testkit.MustPanic(t, func() {
		New().MustString("CONFIG_TEST_DEFINITELY_UNSET")
	})
}

func TestMayAccessors(t *testing.T) {
	t.Setenv("CFGT_INT", "7")
	t.Setenv("CFGT_BOOL", "1")
	t.Setenv("CFGT_DUR", "1500ms")
	t.Setenv("CFGT_CSV", "a, b ,c")
	t.Setenv("CFGT_DATE", "2025-06-01")
	t.Setenv("CFGT_FLOAT", "0.85")

	c := New().Prefix("CFGT_")
	if got := c.MayInt("INT", 0); got != 7 {
		t.Fatalf("MayInt = %d", got)
	}
	if !c.MayBool("BOOL", false) {
		t.Fatal("MayBool = false")
	}
	if got := c.MayDuration("DUR", 0); got != 1500*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayCSV("CSV", nil); len(got) != 3 || got[1] != "b" {
		t.Fatalf("MayCSV = %v", got)
	}
	if got := c.MayDate("DATE", time.Time{}); !got.Equal(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("MayDate = %v", got)
	}
	if got := c.MayFloat64("FLOAT", 0); got != 0.85 {
		t.Fatalf("MayFloat64 = %v", got)
	}

	if got := c.MayInt("UNSET", 42); got != 42 {
		t.Fatalf("MayInt default = %d", got)
	}
	if got := c.MayString("UNSET", "fallback"); got != "fallback" {
		t.Fatalf("MayString default = %q", got)
	}
}

func TestMayDatePanicsOnGarbage(t *testing.T) {
	t.Setenv("CFGT_BAD_DATE", "June 1st")
	testkit.MustPanic(t, func() {
		New().Prefix("CFGT_").MayDate("BAD_DATE", time.Time{})
	})
}
