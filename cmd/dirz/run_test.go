package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/dirz"
	"github.com/zoobzio/dirz/examples/ecosystem"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func noExit(t *testing.T) func(int) {
	return func(code int) {
		t.Errorf("unexpected exit(%d)", code)
	}
}

func TestRunDemo(t *testing.T) {
	ctx := context.Background()

	t.Run("Default Cycle", func(t *testing.T) {
		var out, errOut bytes.Buffer
		if err := runDemo(ctx, runOptions{}, &out, &errOut, zap.NewNop(), noExit(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "=== Di-RAM Directed Semantic Demo ===\n" +
			"[IN]  compress: carbon 50 → 40\n" +
			"[OUT] release: oxygen → 5\n" +
			"Final state: Earth-v1 | C:40 O:5\n"
		if out.String() != want {
			t.Errorf("expected:\n%s\ngot:\n%s", want, out.String())
		}
		if errOut.Len() != 0 {
			t.Errorf("expected empty stderr, got %q", errOut.String())
		}
	})

	t.Run("Failure Is Returned", func(t *testing.T) {
		state := writeFile(t, "state.yaml", "name: Mars\ncarbon: 5\noxygen: 0\n")

		var out, errOut bytes.Buffer
		err := runDemo(ctx, runOptions{StatePath: state}, &out, &errOut, zap.NewNop(), noExit(t))
		if !errors.Is(err, ecosystem.ErrNotEnoughCarbon) {
			t.Fatalf("expected ErrNotEnoughCarbon, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "failed after 0 of 2 steps") {
			t.Errorf("unexpected error text: %v", err)
		}
		if strings.Contains(out.String(), "Final state") {
			t.Error("final state should not print on failure")
		}
	})

	t.Run("Abort Policy", func(t *testing.T) {
		state := writeFile(t, "state.yaml", "name: Mars\ncarbon: 5\n")

		var out, errOut bytes.Buffer
		var codes []int
		err := runDemo(ctx, runOptions{StatePath: state, Abort: true}, &out, &errOut, zap.NewNop(), func(code int) {
			codes = append(codes, code)
		})
		if !errors.Is(err, errAborted) {
			t.Fatalf("expected errAborted, got %v", err)
		}
		if len(codes) != 1 || codes[0] != dirz.ExitFailure {
			t.Errorf("expected exit(1), got %v", codes)
		}
		want := "[IN] compress failed → compression step failed – not enough carbon\n"
		if errOut.String() != want {
			t.Errorf("expected %q, got %q", want, errOut.String())
		}
	})

	t.Run("Abort Policy Success", func(t *testing.T) {
		var out, errOut bytes.Buffer
		if err := runDemo(ctx, runOptions{Abort: true}, &out, &errOut, zap.NewNop(), noExit(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(out.String(), "Final state: Earth-v1 | C:40 O:5\n") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("Plan File", func(t *testing.T) {
		plan := writeFile(t, "plan.yaml", `steps:
  - step: compress
    direction: in
  - step: compress
    direction: forward
  - step: oxygen
    direction: OUT
`)

		var out, errOut bytes.Buffer
		if err := runDemo(ctx, runOptions{PlanPath: plan}, &out, &errOut, zap.NewNop(), noExit(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(out.String(), "Final state: Earth-v1 | C:30 O:5\n") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("Plan With Unknown Step", func(t *testing.T) {
		plan := writeFile(t, "plan.yaml", "steps:\n  - step: oxygen\n    direction: in\n")

		var out, errOut bytes.Buffer
		err := runDemo(ctx, runOptions{PlanPath: plan}, &out, &errOut, zap.NewNop(), noExit(t))
		if !errors.Is(err, dirz.ErrUnknownBinding) {
			t.Fatalf("expected ErrUnknownBinding, got %v", err)
		}
	})
}

func TestLoadPlan(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		steps, err := loadPlan("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []planStep{
			{Call: dirz.In(ecosystem.CompressName), Message: "compression step failed – not enough carbon"},
			{Call: dirz.Out(ecosystem.OxygenName), Message: "oxygen step failed – cycle broken"},
		}
		if diff := cmp.Diff(want, steps); diff != "" {
			t.Errorf("default plan mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Custom Message", func(t *testing.T) {
		path := writeFile(t, "plan.yaml", "steps:\n  - step: compress\n    direction: in\n    message: custom\n")
		steps, err := loadPlan(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if steps[0].Message != "custom" {
			t.Errorf("expected custom message, got %q", steps[0].Message)
		}
	})

	t.Run("Invalid Direction", func(t *testing.T) {
		path := writeFile(t, "plan.yaml", "steps:\n  - step: compress\n    direction: sideways\n")
		if _, err := loadPlan(path); !errors.Is(err, dirz.ErrInvalidDirection) {
			t.Errorf("expected ErrInvalidDirection, got %v", err)
		}
	})

	t.Run("Missing Direction", func(t *testing.T) {
		path := writeFile(t, "plan.yaml", "steps:\n  - step: compress\n")
		if _, err := loadPlan(path); !errors.Is(err, dirz.ErrInvalidDirection) {
			t.Errorf("expected ErrInvalidDirection, got %v", err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		path := writeFile(t, "plan.yaml", "steps: []\n")
		if _, err := loadPlan(path); !errors.Is(err, errEmptyPlan) {
			t.Errorf("expected errEmptyPlan, got %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := loadPlan(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})
}

func TestLoadState(t *testing.T) {
	t.Run("Partial File Keeps Defaults", func(t *testing.T) {
		path := writeFile(t, "state.yaml", "carbon: 12\n")
		world, err := loadState(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *world != (ecosystem.Ecosystem{Name: "Earth-v1", Carbon: 12, Oxygen: 0}) {
			t.Errorf("unexpected world %+v", *world)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		path := writeFile(t, "state.yaml", "carbon: [\n")
		if _, err := loadState(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestListBindings(t *testing.T) {
	var out bytes.Buffer
	if err := listBindings(&out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Registered bindings:\n" +
		"  IN   compress\n" +
		"  IN   fossil_fold\n" +
		"  OUT  microbractio\n" +
		"  OUT  oxygen\n"
	if out.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, out.String())
	}
}
