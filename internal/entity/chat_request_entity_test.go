package entity

import (
	"testing"

	"github.com/google/uuid"
)

func TestPairKeyIsDirectionIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	if PairKey(a, b) != PairKey(b, a) {
		t.Fatal("pair key must not depend on argument order")
	}
	if PairKey(a, b) == PairKey(a, uuid.New()) {
		t.Fatal("distinct pairs must produce distinct keys")
	}
}

func TestIsPending(t *testing.T) {
	tests := []struct {
		status ChatRequestStatus
		want   bool
	}{
		{ChatRequestStatusPending, true},
		{ChatRequestStatusAccepted, false},
		{ChatRequestStatusRejected, false},
		{ChatRequestStatusBlocked, false},
	}

	for _, tc := range tests {
		r := &ChatRequest{Status: tc.status}
		if r.IsPending() != tc.want {
			t.Errorf("IsPending() for %q = %v, want %v", tc.status, r.IsPending(), tc.want)
		}
	}
}
