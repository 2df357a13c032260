package transmute

import (
	"context"
	"errors"
	"testing"
)

// label returns an EdgeFunc that appends " -> name" to a string value,
// the convention every end-to-end scenario below uses to make the
// resolved chain observable in the output value itself.
func label(name string) EdgeFunc {
	return func(v any) (any, error) {
		return v.(string) + " -> " + name, nil
	}
}

func mustTransmute(t *testing.T, reg *Registry, value any, src, dst Category, opts ...TransmuteOption) any {
	t.Helper()
	got, err := reg.Transmute(context.Background(), value, src, dst, opts...)
	if err != nil {
		t.Fatalf("Transmute failed: %v", err)
	}
	return got
}

// Scenario 1: linear choice between a direct 3-edge chain and a longer
// 4-edge detour of equal per-edge cost.
func TestScenarioLinearChoice(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	A, B, C, D, E, F, G := CatKey("A"), CatKey("B"), CatKey("C"), CatKey("D"), CatKey("E"), CatKey("F"), CatKey("G")

	reg.RegisterEdge(ctx, 1, A, nil, B, nil, label("AtoB"), "AtoB")
	reg.RegisterEdge(ctx, 1, A, nil, E, nil, label("AtoE"), "AtoE")
	reg.RegisterEdge(ctx, 1, B, nil, C, nil, label("BtoC"), "BtoC")
	reg.RegisterEdge(ctx, 1, C, nil, D, nil, label("CtoD"), "CtoD")
	reg.RegisterEdge(ctx, 1, E, nil, F, nil, label("EtoF"), "EtoF")
	reg.RegisterEdge(ctx, 1, F, nil, G, nil, label("FtoG"), "FtoG")
	reg.RegisterEdge(ctx, 1, G, nil, D, nil, label("GtoD"), "GtoD")

	got := mustTransmute(t, reg, "start", A, D)
	if got != "start -> AtoB -> BtoC -> CtoD" {
		t.Fatalf("got %q", got)
	}
}

// Scenario 2: diamond shape, single least-cost path through the middle.
func TestScenarioDiamond(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	A, B, C, D, E, F := CatKey("A"), CatKey("B"), CatKey("C"), CatKey("D"), CatKey("E"), CatKey("F")

	reg.RegisterEdge(ctx, 1, A, nil, C, nil, label("AtoC"), "AtoC")
	reg.RegisterEdge(ctx, 1, B, nil, C, nil, label("BtoC"), "BtoC")
	reg.RegisterEdge(ctx, 1, C, nil, D, nil, label("CtoD"), "CtoD")
	reg.RegisterEdge(ctx, 1, D, nil, E, nil, label("DtoE"), "DtoE")
	reg.RegisterEdge(ctx, 1, D, nil, F, nil, label("DtoF"), "DtoF")

	got := mustTransmute(t, reg, "start", A, F)
	if got != "start -> AtoC -> CtoD -> DtoF" {
		t.Fatalf("got %q", got)
	}
}

// Scenario 3: the destination's tag requirement cannot be met by the
// structurally cheapest A-B-A cycle; the chain must detour through the
// tag-providing C-B edge even though that costs more.
func TestScenarioTagDirectedDetour(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	A, B, C := CatKey("A"), CatKey("B"), CatKey("C")
	varTag := TagKey("var")

	reg.RegisterEdge(ctx, 1, A, nil, B, nil, label("AtoB"), "AtoB")
	reg.RegisterEdge(ctx, 1, B, nil, A, nil, label("BtoA"), "BtoA")
	reg.RegisterEdge(ctx, 1, B, nil, C, nil, label("BtoC"), "BtoC")
	reg.RegisterEdge(ctx, 1, C, nil, B, []Tag{varTag}, label("CtoB:var"), "CtoB:var")

	got := mustTransmute(t, reg, "start", A, A, WithDstTags(varTag))
	if got != "start -> AtoB -> BtoC -> CtoB:var -> BtoA" {
		t.Fatalf("got %q", got)
	}
}

// Scenario 4: reaching the destination with both required tags forces the
// F branch over the equally cheap B branch, because only F's side supplies
// var1, and the cost-2 C-D edge over the cheaper C-G edge, because only it
// supplies var2.
func TestScenarioTagDependencyForcesHigherCostBranch(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	A, B, C, D, E, F, G := CatKey("A"), CatKey("B"), CatKey("C"), CatKey("D"), CatKey("E"), CatKey("F"), CatKey("G")
	var1, var2 := TagKey("var1"), TagKey("var2")

	reg.RegisterEdge(ctx, 1, A, nil, B, nil, label("AtoB"), "AtoB")
	reg.RegisterEdge(ctx, 1, A, nil, F, nil, label("AtoF"), "AtoF")
	reg.RegisterEdge(ctx, 1, B, nil, C, nil, label("BtoC"), "BtoC")
	reg.RegisterEdge(ctx, 2, C, nil, D, []Tag{var2}, label("CtoD:var2"), "CtoD:var2")
	reg.RegisterEdge(ctx, 1, C, nil, G, nil, label("CtoG"), "CtoG")
	reg.RegisterEdge(ctx, 1, D, nil, E, nil, label("DtoE"), "DtoE")
	reg.RegisterEdge(ctx, 1, F, nil, C, []Tag{var1}, label("FtoC:var1"), "FtoC:var1")
	reg.RegisterEdge(ctx, 1, G, nil, E, nil, label("GtoE"), "GtoE")

	got := mustTransmute(t, reg, "start", A, E, WithDstTags(var1, var2))
	if got != "start -> AtoF -> FtoC:var1 -> CtoD:var2 -> DtoE" {
		t.Fatalf("got %q", got)
	}
}

// Scenario 5: the only edge from the chosen source to the destination
// always raises, and banning it leaves no alternative — this must surface
// as ExecutionFailed, not NoChain, once an execution error is on record.
func TestScenarioExecutionFailureNoAlternative(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	A, B, C, D, E, F, G := CatKey("A"), CatKey("B"), CatKey("C"), CatKey("D"), CatKey("E"), CatKey("F"), CatKey("G")
	varTag := TagKey("var")

	reg.RegisterEdge(ctx, 1, A, nil, B, nil, label("AtoB"), "AtoB")
	reg.RegisterEdge(ctx, 1, C, nil, D, nil, label("CtoD"), "CtoD")
	reg.RegisterEdge(ctx, 1, E, []Tag{varTag}, F, nil, label("EtoF:var"), "EtoF:var")
	reg.RegisterEdge(ctx, 1, F, nil, G, nil, func(v any) (any, error) {
		return nil, errors.New("BAD STUFF")
	}, "FtoG")

	_, err := reg.Transmute(ctx, "start", F, G)
	var execErr *ExecutionFailedError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionFailedError, got %v", err)
	}
}

func TestScenarioNoChainWhenUnreachable(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	A, B, C, D := CatKey("A"), CatKey("B"), CatKey("C"), CatKey("D")
	reg.RegisterEdge(ctx, 1, A, nil, B, nil, label("AtoB"), "AtoB")
	reg.RegisterEdge(ctx, 1, C, nil, D, nil, label("CtoD"), "CtoD")

	_, err := reg.Transmute(ctx, "start", A, D)
	var graphErr *GraphError
	if !errors.As(err, &graphErr) || !errors.Is(err, ErrNoChain) {
		t.Fatalf("expected GraphError wrapping ErrNoChain, got %v", err)
	}
}

func TestScenarioNoStartingEdgeWhenTagUnmet(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	E, F := CatKey("E"), CatKey("F")
	reg.RegisterEdge(ctx, 1, E, []Tag{TagKey("var")}, F, nil, label("EtoF:var"), "EtoF:var")

	_, err := reg.Transmute(ctx, "start", E, F)
	var regErr *RegistryError
	if !errors.As(err, &regErr) || !errors.Is(err, ErrNoStartingOrTerminatingEdge) {
		t.Fatalf("expected RegistryError wrapping ErrNoStartingOrTerminatingEdge, got %v", err)
	}
}

// Scenario 6: a detector supplies the tag that unlocks the cheaper tagged
// branch, without the caller stating it explicitly.
func TestScenarioDetectorSuppliedTag(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	A, B, C, D := CatKey("A"), CatKey("B"), CatKey("C"), CatKey("D")
	varTag := TagKey("var")

	reg.RegisterDetector(ctx, A, func(v any) []Tag { return []Tag{varTag} })
	reg.RegisterEdge(ctx, 1, A, nil, B, nil, label("AtoB"), "AtoB")
	reg.RegisterEdge(ctx, 1, A, []Tag{varTag}, D, nil, label("AtoD:var"), "AtoD:var")
	reg.RegisterEdge(ctx, 1, B, nil, C, nil, label("BtoC"), "BtoC")
	reg.RegisterEdge(ctx, 1, D, nil, C, nil, label("DtoC"), "DtoC")

	got := mustTransmute(t, reg, "start", A, C)
	if got != "start -> AtoD:var -> DtoC" {
		t.Fatalf("got %q", got)
	}
}

// Scenario 7 (original_source/graph.py): a cost-3 tag-providing edge forces
// the whole remaining loop back around to the source rather than a cheaper
// untagged shortcut.
func TestScenarioOriginalSourceLongDetour(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	A, B, C, D, E, F, G := CatKey("A"), CatKey("B"), CatKey("C"), CatKey("D"), CatKey("E"), CatKey("F"), CatKey("G")
	varTag := TagKey("var")

	reg.RegisterEdge(ctx, 1, A, nil, B, nil, label("AtoB"), "AtoB")
	reg.RegisterEdge(ctx, 1, B, nil, C, nil, label("BtoC"), "BtoC")
	reg.RegisterEdge(ctx, 1, B, nil, E, nil, label("BtoE"), "BtoE")
	reg.RegisterEdge(ctx, 3, C, nil, D, []Tag{varTag}, label("CtoD:var"), "CtoD:var")
	reg.RegisterEdge(ctx, 1, C, nil, F, nil, label("CtoF"), "CtoF")
	reg.RegisterEdge(ctx, 1, D, nil, G, nil, label("DtoG"), "DtoG")
	reg.RegisterEdge(ctx, 1, E, nil, A, nil, label("EtoA"), "EtoA")
	reg.RegisterEdge(ctx, 1, F, nil, E, nil, label("FtoE"), "FtoE")
	reg.RegisterEdge(ctx, 1, G, nil, F, nil, label("GtoF"), "GtoF")

	got := mustTransmute(t, reg, "start", A, A, WithDstTags(varTag))
	want := "start -> AtoB -> BtoC -> CtoD:var -> DtoG -> GtoF -> FtoE -> EtoA"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
