package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	meta := MetadataFor(CodeConflict)
	if meta.HTTPStatus != http.StatusConflict {
		t.Fatalf("unexpected status for conflict: %d", meta.HTTPStatus)
	}
	if !meta.Retryable {
		t.Fatal("conflict should be retryable")
	}

	meta = MetadataFor(Code("UNKNOWN"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to internal: %d", meta.HTTPStatus)
	}
}

func TestWrapAndAs(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(CodeDependency, cause, "loading auction")

	typed := As(fmt.Errorf("outer: %w", err))
	if typed == nil {
		t.Fatal("expected typed error through wrapping")
	}
	if typed.Code() != CodeDependency {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should be reachable via Unwrap")
	}
}

func TestReason(t *testing.T) {
	err := New(CodeConflict, "bid superseded").WithReason(ReasonStaleBid)
	if !HasReason(err, ReasonStaleBid) {
		t.Fatal("expected stale bid reason")
	}
	if HasReason(err, ReasonInsufficientBudget) {
		t.Fatal("unexpected reason match")
	}
	if HasReason(errors.New("plain"), ReasonStaleBid) {
		t.Fatal("plain errors carry no reason")
	}
	want := "CONFLICT (stale_bid): bid superseded"
	if err.Error() != want {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestNilReceivers(t *testing.T) {
	var err *Error
	if err.Code() != CodeInternal {
		t.Fatal("nil error should report internal code")
	}
	if err.WithDetails("x") != nil {
		t.Fatal("nil error should stay nil")
	}
	if err.WithReason(ReasonStaleBid) != nil {
		t.Fatal("nil error should stay nil")
	}
}
