package assert

import (
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/exp/constraints"
)

func OK(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatal("error:", err)
	}
}

func Error(t testing.TB, got, want error) {
	if !errors.Is(got, want) {
		t.Helper()
		t.Fatalf("error mismatch\nwant = %s\ngot  = %s", want, got)
	}
}

func ErrorAs[T error](t testing.TB, got error) T {
	var target T
	if !errors.As(got, &target) {
		t.Helper()
		t.Fatalf("error type mismatch\nwant = %T\ngot  = %v", target, got)
	}
	return target
}

func ExitError(t testing.TB, got error, wantExitCode int) {
	switch e := got.(type) {
	case *exec.ExitError:
		if gotExitCode := e.ExitCode(); gotExitCode != wantExitCode {
			t.Helper()
			t.Fatalf("exit code mismatch\nwant = %d\ngot  = %d", wantExitCode, gotExitCode)
		}
	default:
		t.Helper()
		t.Fatalf("error mismatch\nwant = exec.ExitError(%d)\ngot  = %v", wantExitCode, got)
	}
}

func Equal[T comparable](t testing.TB, got, want T) {
	if got != want {
		t.Helper()
		t.Fatalf("value mismatch\nwant = %#v\ngot  = %#v", want, got)
	}
}

func NotEqual[T comparable](t testing.TB, got, want T) {
	if got == want {
		t.Helper()
		t.Fatalf("value should not be equal to %#v", want)
	}
}

func EqualAll[T comparable](t testing.TB, got, want []T) {
	if len(got) != len(want) {
		t.Helper()
		t.Fatalf("number of values mismatch\nwant = %#v\ngot  = %#v", want, got)
	}

	for i, value := range want {
		if value != got[i] {
			t.Helper()
			t.Fatalf("value at index %d/%d mismatch\nwant = %#v\ngot  = %#v", i, len(want), value, got[i])
		}
	}
}

func HasPrefix[T ~string](t testing.TB, got, want T) {
	if !strings.HasPrefix(string(got), string(want)) {
		t.Helper()
		t.Fatalf("prefix mismatch\nwant = %q\ngot  = %q", want, got)
	}
}

func Less[T constraints.Ordered](t testing.TB, less, more T) {
	if less >= more {
		t.Helper()
		t.Fatalf("value is too large: %v >= %v", less, more)
	}
}

func DeepEqual(t testing.TB, got, want any) {
	if !reflect.DeepEqual(got, want) {
		t.Helper()
		t.Fatalf("value mismatch\nwant = %#v\ngot  = %#v", want, got)
	}
}

// Panic runs fn and fails the test if it returns without panicking. The
// value passed to panic is returned.
func Panic(t testing.TB, fn func()) (value any) {
	t.Helper()
	defer func() {
		if value = recover(); value == nil {
			t.Fatal("function returned without panicking")
		}
	}()
	fn()
	return nil
}
