package transmute

import (
	"context"
	"errors"
	"testing"
)

func TestExecutorRunAppliesEdgesInOrder(t *testing.T) {
	x := NewExecutor()
	A, B, C := CatKey("A"), CatKey("B"), CatKey("C")
	e1 := &Edge{CatIn: A, CatOut: B, Fn: label("AtoB"), Name: "AtoB"}
	e2 := &Edge{CatIn: B, CatOut: C, Fn: label("BtoC"), Name: "BtoC"}

	result, failedAt, err := x.Run(context.Background(), Chain{e1, e2}, "start", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failedAt != nil {
		t.Fatalf("expected no failing edge")
	}
	if result != "start -> AtoB -> BtoC" {
		t.Fatalf("got %v", result)
	}
}

func TestExecutorRunStopsAtFirstFailure(t *testing.T) {
	x := NewExecutor()
	A, B, C := CatKey("A"), CatKey("B"), CatKey("C")
	boom := errors.New("boom")
	e1 := &Edge{CatIn: A, CatOut: B, Fn: label("AtoB"), Name: "AtoB"}
	e2 := &Edge{CatIn: B, CatOut: C, Fn: func(any) (any, error) { return nil, boom }, Name: "BtoC:fails"}

	result, failedAt, err := x.Run(context.Background(), Chain{e1, e2}, "start", nil, "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected the edge's own error, got %v", err)
	}
	if failedAt == nil || failedAt.Name != "BtoC:fails" {
		t.Fatalf("expected failedAt to identify the failing edge, got %v", failedAt)
	}
	if result != "start -> AtoB" {
		t.Fatalf("expected the value as of the last successful edge, got %v", result)
	}
}

func TestExecutorRunRecoversPanickingEdge(t *testing.T) {
	x := NewExecutor()
	A, B := CatKey("A"), CatKey("B")
	e1 := &Edge{CatIn: A, CatOut: B, Fn: func(any) (any, error) { panic("nope") }, Name: "AtoB:panics"}

	_, failedAt, err := x.Run(context.Background(), Chain{e1}, "start", nil, "")
	if err == nil {
		t.Fatalf("expected a recovered error, not a propagated panic")
	}
	if failedAt != e1 {
		t.Fatalf("expected failedAt to be the panicking edge")
	}
}

func TestExecutorRunHonorsContextCancellation(t *testing.T) {
	x := NewExecutor()
	A, B := CatKey("A"), CatKey("B")
	e1 := &Edge{CatIn: A, CatOut: B, Fn: label("AtoB"), Name: "AtoB"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, failedAt, err := x.Run(ctx, Chain{e1}, "start", nil, "")
	if err == nil {
		t.Fatalf("expected a context error")
	}
	if failedAt != nil {
		t.Fatalf("expected no specific failing edge on context cancellation")
	}
}

func TestExecutorRunOnEmptyChainReturnsInputUnchanged(t *testing.T) {
	x := NewExecutor()
	result, failedAt, err := x.Run(context.Background(), nil, "start", nil, "")
	if err != nil || failedAt != nil {
		t.Fatalf("expected a no-op on an empty chain")
	}
	if result != "start" {
		t.Fatalf("got %v", result)
	}
}
