package app

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CORBIT_TEST_STR", "  hello  ")
	if got := EnvString("CORBIT_TEST_STR", "def"); got != "hello" {
		t.Fatalf("EnvString = %q", got)
	}
	if got := EnvString("CORBIT_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("EnvString default = %q", got)
	}

	t.Setenv("CORBIT_TEST_BOOL", "true")
	if !EnvBool("CORBIT_TEST_BOOL", false) {
		t.Fatal("EnvBool should be true")
	}
	t.Setenv("CORBIT_TEST_BOOL", "nope")
	if EnvBool("CORBIT_TEST_BOOL", false) {
		t.Fatal("invalid bool should fall back to default")
	}

	t.Setenv("CORBIT_TEST_INT", "42")
	if got := EnvInt("CORBIT_TEST_INT", 7); got != 42 {
		t.Fatalf("EnvInt = %d", got)
	}
	t.Setenv("CORBIT_TEST_INT", "-3")
	if got := EnvInt("CORBIT_TEST_INT", 7); got != 7 {
		t.Fatalf("non-positive int should fall back, got %d", got)
	}

	t.Setenv("CORBIT_TEST_DUR", "90s")
	if got := EnvDuration("CORBIT_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("EnvDuration = %v", got)
	}
}

func TestEnvStrings(t *testing.T) {
	t.Setenv("CORBIT_TEST_LIST", "a, b ,,c")
	got := EnvStrings("CORBIT_TEST_LIST", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("EnvStrings = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EnvStrings[%d] = %q want %q", i, got[i], want[i])
		}
	}

	def := []string{"*"}
	if got := EnvStrings("CORBIT_TEST_LIST_MISSING", def); len(got) != 1 || got[0] != "*" {
		t.Fatalf("EnvStrings default = %v", got)
	}
}
