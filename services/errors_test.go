package services

import (
	"errors"
	"fmt"
	"testing"

	"gatherly-api/repositories"

	"gorm.io/gorm"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := forbidden("closePlan", "only the initiator can close the plan")
	if !errors.Is(err, ErrForbidden) {
		t.Fatal("expected errors.Is to match ErrForbidden")
	}
	if errors.Is(err, ErrInvalidState) {
		t.Fatal("forbidden must not match ErrInvalidState")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if KindOf(wrapped) != KindForbidden {
		t.Fatalf("KindOf(wrapped) = %q", KindOf(wrapped))
	}
}

func TestStoreErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want Kind
	}{
		{"missing row", gorm.ErrRecordNotFound, KindNotFound},
		{"guarded write lost", repositories.ErrConflict, KindInvalidState},
		{"driver failure", errors.New("dial tcp: connection refused"), KindUnavailable},
		{"already classified", invalidState("op", "no votes cast"), KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storeError("op", tt.in, "plan not found")
			if KindOf(got) != tt.want {
				t.Fatalf("kind = %q, want %q (err=%v)", KindOf(got), tt.want, got)
			}
		})
	}

	if storeError("op", nil, "x") != nil {
		t.Fatal("nil error must stay nil")
	}
}

func TestErrorMessage(t *testing.T) {
	err := invalidState("closePlan", "no votes cast")
	if err.Error() != "closePlan: no votes cast" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
