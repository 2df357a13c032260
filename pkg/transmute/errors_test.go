package transmute

import (
	"errors"
	"testing"
)

func TestExecutionFailedErrorBundlesFailures(t *testing.T) {
	err := &ExecutionFailedError{Failures: []ExecutionFailure{
		{EdgeName: "FtoG", Attempt: 1, Err: errors.New("boom")},
		{EdgeName: "FtoG", Attempt: 2, Err: errors.New("boom again")},
	}}
	msg := err.Error()
	if msg == "" {
		t.Fatalf("expected non-empty message")
	}
	var target *ExecutionFailedError
	if !errors.As(error(err), &target) {
		t.Fatalf("errors.As should find the ExecutionFailedError itself")
	}
}

func TestRegistryErrorUnwrapsToSentinel(t *testing.T) {
	err := &RegistryError{Err: ErrNoStartingOrTerminatingEdge, Detail: "no edge starts at X"}
	if !errors.Is(err, ErrNoStartingOrTerminatingEdge) {
		t.Fatalf("expected errors.Is to match the sentinel")
	}
}

func TestGraphErrorUnwrapsToSentinel(t *testing.T) {
	err := &GraphError{Err: ErrNoChain, Detail: "no chain from X to Y"}
	if !errors.Is(err, ErrNoChain) {
		t.Fatalf("expected errors.Is to match the sentinel")
	}
}
