package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jzbor/zinn/internal/runner"
	"github.com/jzbor/zinn/internal/zinnerr"
	"github.com/jzbor/zinn/internal/zinnfile"
)

// withZinnfile writes contents to a temp dir's zinn.yaml, chdirs there for
// the duration of the test, and returns the parsed Zinnfile. Scenario
// Zinnfiles reference relative paths (in.txt, out.txt), matching how
// runRoot itself chdirs to the Zinnfile's directory before loading.
func withZinnfile(t *testing.T, contents string) *zinnfile.Zinnfile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "zinn.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	zf, err := zinnfile.Load("zinn.yaml")
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return zf
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// TestScenario_S1_LinearDependency exercises spec's S1: a -> b -> default,
// each completing in order, exit success.
func TestScenario_S1_LinearDependency(t *testing.T) {
	zf := withZinnfile(t, `
jobs:
  a: { run: "echo A" }
  b: { run: "echo B", requires: [{ job: a }] }
  default: { requires: [{ job: b }] }
`)

	out := captureStdout(t, func() {
		err := runPipeline(context.Background(), zf, []string{"default"}, nil, nil, runner.Options{}, true, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	idxA := strings.Index(out, "DONE a")
	idxB := strings.Index(out, "DONE b")
	if idxA == -1 || idxB == -1 || idxA > idxB {
		t.Fatalf("expected a to complete before b, got:\n%s", out)
	}
}

// TestScenario_S2_ForeachExpansion exercises spec's S2: three independent
// greet realizations, one per foreach token.
func TestScenario_S2_ForeachExpansion(t *testing.T) {
	zf := withZinnfile(t, `
jobs:
  greet:
    args: [who]
    run: "echo hi {{who}}"
  default:
    requires:
      - job: greet
        foreach: { var: who, in: "alice bob  carol" }
`)

	out := captureStdout(t, func() {
		err := runPipeline(context.Background(), zf, []string{"default"}, nil, nil, runner.Options{}, true, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	for _, who := range []string{"alice", "bob", "carol"} {
		if !strings.Contains(out, "DONE greet("+who+")") {
			t.Fatalf("expected completion line for %s, got:\n%s", who, out)
		}
	}
}

// TestScenario_S3_MtimeSkip exercises spec's S3: skip when outputs are
// already newer than inputs, force-rebuild overrides the skip.
func TestScenario_S3_MtimeSkip(t *testing.T) {
	zf := withZinnfile(t, `
jobs:
  default:
    inputs: "in.txt"
    outputs: "out.txt"
    run: "cp in.txt out.txt"
`)

	if err := os.WriteFile("in.txt", []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("out.txt", []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := captureStdout(t, func() {
		err := runPipeline(context.Background(), zf, []string{"default"}, nil, nil, runner.Options{}, true, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "SKIPPED default") {
		t.Fatalf("expected first run to skip, got:\n%s", out)
	}

	out = captureStdout(t, func() {
		err := runPipeline(context.Background(), zf, []string{"default"}, nil, nil, runner.Options{Force: true}, true, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "DONE default") {
		t.Fatalf("expected --force-rebuild run to execute, got:\n%s", out)
	}
}

// TestScenario_S4_FailureDrainsPool exercises spec's S4: a failing sibling sets the queue's failed flag and stops default
// from ever starting, while the slow sibling still completes.
func TestScenario_S4_FailureDrainsPool(t *testing.T) {
	zf := withZinnfile(t, `
jobs:
  slow:  { run: "sleep 0.2; echo slow" }
  boom:  { run: "exit 7" }
  default: { requires: [{ job: slow }, { job: boom }] }
`)

	out := captureStdout(t, func() {
		err := runPipeline(context.Background(), zf, []string{"default"}, nil, nil, runner.Options{}, true, 2)
		if err == nil {
			t.Fatal("expected an error from the failed job")
		}
	})

	if !strings.Contains(out, "FAILED boom") {
		t.Fatalf("expected boom to fail, got:\n%s", out)
	}
	if !strings.Contains(out, "DONE slow") {
		t.Fatalf("expected slow to still complete, got:\n%s", out)
	}
	if strings.Contains(out, "default") {
		t.Fatalf("expected default to never start, got:\n%s", out)
	}
}

// TestScenario_S5_MissingArgument exercises spec's S5: realization fails
// before any worker runs.
func TestScenario_S5_MissingArgument(t *testing.T) {
	zf := withZinnfile(t, `
jobs:
  p: { args: [x], run: "echo {{x}}" }
  default: { requires: [{ job: p }] }
`)

	err := runPipeline(context.Background(), zf, []string{"default"}, nil, nil, runner.Options{}, true, 1)
	if !errors.Is(err, zinnerr.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got: %v", err)
	}
}

// TestScenario_S6_ConstantsOrderSensitive exercises spec's S6: constants
// render in declared order against each other.
func TestScenario_S6_ConstantsOrderSensitive(t *testing.T) {
	zf := withZinnfile(t, `
constants:
  a: "1"
  b: "{{a}}2"
  c: "{{b}}3"
jobs:
  default: { run: "echo {{c}}" }
`)

	out := captureStdout(t, func() {
		err := runPipeline(context.Background(), zf, []string{"default"}, nil, nil, runner.Options{}, true, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "DONE default") {
		t.Fatalf("expected default to complete, got:\n%s", out)
	}
	if !strings.Contains(out, "123") {
		t.Fatalf("expected rendered output \"123\", got:\n%s", out)
	}
}
