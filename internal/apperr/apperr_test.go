package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationErrorKeepsFirstMessage(t *testing.T) {
	ve := NewValidationError()
	if !ve.Empty() {
		t.Fatalf("new error should be empty")
	}
	ve.Set("email", "Email is required")
	ve.Set("email", "Invalid email format")
	ve.Set("name", "Name is required")
	if ve.Fields["email"] != "Email is required" {
		t.Fatalf("first message overwritten: %q", ve.Fields["email"])
	}
	if got := ve.Error(); got != "validation failed: email: Email is required; name: Name is required" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestUserMessageClassifies(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("patch: %w", ErrConflict), "changed by someone else"},
		{&NetworkError{Op: "list scrums", Err: errors.New("refused")}, "unreachable"},
		{fmt.Errorf("wrap: %w", NewValidationError()), "highlighted fields"},
		{ErrForbidden, "Only admins"},
		{errors.New("boom"), "Something went wrong"},
	}
	for _, tc := range cases {
		if got := UserMessage(tc.err); !strings.Contains(got, tc.want) {
			t.Errorf("UserMessage(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
	if UserMessage(nil) != "" {
		t.Fatalf("nil error should have no message")
	}
}

func TestNetworkErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("outer: %w", &NetworkError{Op: "get task", Status: 502, Err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("status missing: %v", err)
	}
}
