package realize

import (
	"errors"
	"testing"

	"github.com/jzbor/zinn/internal/template"
	"github.com/jzbor/zinn/internal/zinnerr"
	"github.com/jzbor/zinn/internal/zinnfile"
)

func newRealizer(jobs map[string]*zinnfile.JobDescription) *Realizer {
	return NewRealizer(jobs, map[string]string{}, template.NewRegistry())
}

func TestRealize_LinearDependency(t *testing.T) {
	jobs := map[string]*zinnfile.JobDescription{
		"a": {Run: "echo A"},
		"b": {Run: "echo B", Requires: []zinnfile.DependencySpec{{Job: "a"}}},
	}

	job, err := newRealizer(jobs).Realize("b", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(job.Dependencies) != 1 || job.Dependencies[0].Name != "a" {
		t.Fatalf("expected one dependency named a, got %+v", job.Dependencies)
	}
}

func TestRealize_StructuralEquality(t *testing.T) {
	jobs := map[string]*zinnfile.JobDescription{
		"p": {Args: []string{"x"}, Run: "echo {{x}}"},
	}
	r := newRealizer(jobs)

	j1, err := r.Realize("p", map[string]string{"x": "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	j2, err := r.Realize("p", map[string]string{"x": "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j1.Hash != j2.Hash {
		t.Fatalf("expected equal hashes for identical realizations, got %q vs %q", j1.Hash, j2.Hash)
	}

	j3, err := r.Realize("p", map[string]string{"x": "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j1.Hash == j3.Hash {
		t.Fatal("expected different hashes for different parameters")
	}
}

func TestRealize_ForeachExpandsOncePerToken(t *testing.T) {
	jobs := map[string]*zinnfile.JobDescription{
		"greet": {Args: []string{"who"}, Run: "echo hi {{who}}"},
		"default": {
			Requires: []zinnfile.DependencySpec{
				{Job: "greet", Foreach: &zinnfile.ForeachSpec{Var: "who", In: "alice bob  carol"}},
			},
		},
	}

	job, err := newRealizer(jobs).Realize("default", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(job.Dependencies) != 3 {
		t.Fatalf("expected 3 foreach realizations, got %d", len(job.Dependencies))
	}
	seen := map[string]bool{}
	for _, dep := range job.Dependencies {
		seen[dep.Display()] = true
	}
	for _, who := range []string{"alice", "bob", "carol"} {
		want := "greet(" + who + ")"
		if !seen[want] {
			t.Fatalf("expected realization %q, got %v", want, seen)
		}
	}
}

func TestRealize_MissingArgument(t *testing.T) {
	jobs := map[string]*zinnfile.JobDescription{
		"p": {Args: []string{"x"}, Run: "echo {{x}}"},
	}

	_, err := newRealizer(jobs).Realize("p", nil)
	if !errors.Is(err, zinnerr.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
}

func TestRealize_DependencyNotFound(t *testing.T) {
	jobs := map[string]*zinnfile.JobDescription{
		"b": {Requires: []zinnfile.DependencySpec{{Job: "missing"}}},
	}

	_, err := newRealizer(jobs).Realize("b", nil)
	if !errors.Is(err, zinnerr.ErrDependencyNotFound) {
		t.Fatalf("expected ErrDependencyNotFound, got %v", err)
	}
}

func TestRealize_JobNotFound(t *testing.T) {
	_, err := newRealizer(map[string]*zinnfile.JobDescription{}).Realize("nope", nil)
	if !errors.Is(err, zinnerr.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestRealize_DefaultsFillMissingParams(t *testing.T) {
	jobs := map[string]*zinnfile.JobDescription{
		"p": {Args: []string{"x"}, Defaults: map[string]string{"x": "fallback"}, Run: "echo {{x}}"},
	}

	job, err := newRealizer(jobs).Realize("p", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Run != "echo fallback" {
		t.Fatalf("expected default to fill missing param, got %q", job.Run)
	}
}

func TestRenderConstants_OrderSensitive(t *testing.T) {
	ordered := zinnfile.OrderedConstants{
		{Name: "a", Value: "1"},
		{Name: "b", Value: "{{a}}2"},
		{Name: "c", Value: "{{b}}3"},
	}

	out, err := RenderConstants(template.NewRegistry(), ordered, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["c"] != "123" {
		t.Fatalf("got %q, want %q", out["c"], "123")
	}
}

func TestRenderConstants_Overrides(t *testing.T) {
	ordered := zinnfile.OrderedConstants{{Name: "a", Value: "1"}}

	out, err := RenderConstants(template.NewRegistry(), ordered, map[string]string{"a": "99", "b": "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["a"] != "99" || out["b"] != "2" {
		t.Fatalf("expected overrides applied, got %+v", out)
	}
}
