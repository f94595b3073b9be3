package plangen

import (
	"errors"
	"testing"

	"github.com/vught/pacekeeper/internal/models"
)

// fakeGenerator is a minimal Generator for registry tests.
type fakeGenerator struct {
	id       string
	supports map[models.PlanType]bool
}

func (f *fakeGenerator) Methodology() string                 { return f.id }
func (f *fakeGenerator) DisplayName() string                 { return f.id }
func (f *fakeGenerator) Supports(pt models.PlanType) bool    { return f.supports[pt] }
func (f *fakeGenerator) MinWeeks(models.PlanType) int        { return 8 }
func (f *fakeGenerator) MaxWeeks(models.PlanType) int        { return 20 }
func (f *fakeGenerator) WeekFocus(_, _ int) models.WeekFocus { return models.FocusBase }
func (f *fakeGenerator) Generate(Config) (*Plan, error)      { return &Plan{}, nil }

// TestRegistryResolve verifies lookup of registered and unregistered ids.
func TestRegistryResolve(t *testing.T) {
	r, err := NewRegistry(&fakeGenerator{id: "alpha"})
	if err != nil {
		t.Fatal(err)
	}

	g, err := r.Resolve("alpha")
	if err != nil {
		t.Fatalf("Resolve(alpha): %v", err)
	}
	if g.Methodology() != "alpha" {
		t.Errorf("resolved %q, want alpha", g.Methodology())
	}

	_, err = r.Resolve("missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nf.Methodology != "missing" {
		t.Errorf("NotFoundError.Methodology = %q, want missing", nf.Methodology)
	}
}

// TestRegistryDuplicateFails verifies a duplicate methodology id fails
// construction: it indicates a build-time defect, not a request error.
func TestRegistryDuplicateFails(t *testing.T) {
	_, err := NewRegistry(
		&fakeGenerator{id: "alpha"},
		&fakeGenerator{id: "alpha"},
	)
	if err == nil {
		t.Fatal("duplicate registration succeeded, want error")
	}
}

// TestRegistryEmptyIDFails verifies a generator with no methodology id is
// rejected at construction.
func TestRegistryEmptyIDFails(t *testing.T) {
	if _, err := NewRegistry(&fakeGenerator{id: ""}); err == nil {
		t.Fatal("empty methodology id accepted, want error")
	}
}

// TestListAvailable verifies filtering by supported plan type: a
// methodology never appears for a distance it does not declare.
func TestListAvailable(t *testing.T) {
	r, err := NewRegistry(
		&fakeGenerator{id: "half_only", supports: map[models.PlanType]bool{models.PlanHalfMarathon: true}},
		&fakeGenerator{id: "both", supports: map[models.PlanType]bool{
			models.PlanHalfMarathon: true, models.PlanFullMarathon: true,
		}},
	)
	if err != nil {
		t.Fatal(err)
	}

	half := r.ListAvailable(models.PlanHalfMarathon)
	if len(half) != 2 || half[0] != "both" || half[1] != "half_only" {
		t.Errorf("half list = %v, want [both half_only]", half)
	}

	full := r.ListAvailable(models.PlanFullMarathon)
	if len(full) != 1 || full[0] != "both" {
		t.Errorf("full list = %v, want [both]", full)
	}
}

// TestDefaultRegistry verifies the built-in registry resolves "custom"
// for both race distances.
func TestDefaultRegistry(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	g, err := r.Resolve("custom")
	if err != nil {
		t.Fatal(err)
	}
	if !g.Supports(models.PlanHalfMarathon) || !g.Supports(models.PlanFullMarathon) {
		t.Error("custom generator must support both plan types")
	}
	if got := r.ListAvailable(models.PlanHalfMarathon); len(got) != 1 || got[0] != "custom" {
		t.Errorf("ListAvailable = %v, want [custom]", got)
	}
	if len(r.All()) != 1 {
		t.Errorf("All() = %d generators, want 1", len(r.All()))
	}
}
