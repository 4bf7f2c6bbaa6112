package app

import (
	"testing"
	"time"
)

func TestEnvString(t *testing.T) {
	t.Setenv("HEROSG_TEST_STR", "  value  ")
	if got := EnvString("HEROSG_TEST_STR", "def"); got != "value" {
		t.Fatalf("got %q", got)
	}
	if got := EnvString("HEROSG_TEST_STR_UNSET", "def"); got != "def" {
		t.Fatalf("got %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("HEROSG_TEST_BOOL", "true")
	if !EnvBool("HEROSG_TEST_BOOL", false) {
		t.Fatal("true not parsed")
	}
	t.Setenv("HEROSG_TEST_BOOL", "garbage")
	if !EnvBool("HEROSG_TEST_BOOL", true) {
		t.Fatal("garbage should fall back to default")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("HEROSG_TEST_INT", "42")
	if got := EnvInt("HEROSG_TEST_INT", 1); got != 42 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("HEROSG_TEST_INT", "-5")
	if got := EnvInt("HEROSG_TEST_INT", 1); got != 1 {
		t.Fatalf("non-positive should fall back, got %d", got)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("HEROSG_TEST_DUR", "90s")
	if got := EnvDuration("HEROSG_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("got %v", got)
	}
	t.Setenv("HEROSG_TEST_DUR", "not-a-duration")
	if got := EnvDuration("HEROSG_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("got %v", got)
	}
}
