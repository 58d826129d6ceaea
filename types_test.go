package userbase

import (
	"fmt"
	"testing"
)

func Test_ParseCommand(t *testing.T) {
	for _, name := range []string{"Insert", "Update", "Delete", "Rollback"} {
		c, err := ParseCommand(name)
		if err != nil {
			t.Fatalf("ParseCommand(%q) error: %v", name, err)
		}
		if c.String() != name {
			t.Fatalf("round trip mismatch: got %q, want %q", c.String(), name)
		}
	}

	if _, err := ParseCommand("Upsert"); !IsCode(err, BadInput) {
		t.Fatalf("unknown command error mismatch: got %v, want BadInput", err)
	}
}

func Test_Command_IsValid(t *testing.T) {
	valid := map[Command]bool{
		CommandInsert:   true,
		CommandUpdate:   true,
		CommandDelete:   true,
		CommandRollback: false,
		CommandUnknown:  false,
	}
	for c, want := range valid {
		if c.IsValid() != want {
			t.Fatalf("IsValid mismatch for %v: got %v, want %v", c, !want, want)
		}
	}
}

func Test_BundleKey(t *testing.T) {
	if got := BundleKey("u1", 12); got != "u1/12" {
		t.Fatalf("bundle key mismatch: %q", got)
	}
}

func Test_Error_CodeSurvivesWrapping(t *testing.T) {
	err := Errorf(NotFound, "user %s not found", "u")
	wrapped := fmt.Errorf("outer context, details: %w", err)

	if CodeOf(wrapped) != NotFound {
		t.Fatalf("code lost through wrapping: got %d", CodeOf(wrapped))
	}
	if !IsCode(wrapped, NotFound) || IsCode(wrapped, Conflict) {
		t.Fatalf("IsCode mismatch on wrapped error")
	}
	if CodeOf(fmt.Errorf("plain")) != Unknown {
		t.Fatalf("plain error should carry no code")
	}
}
