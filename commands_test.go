package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/reboot/pkg/export"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRunCommand(t *testing.T) {
	out, _, err := execute(t, "", "run", "examples/larger.txt")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Part 1: 590784\n") {
		t.Errorf("missing part 1 in output:\n%s", out)
	}
	if !strings.Contains(out, "Part 2: ") || !strings.Contains(out, "Finished 22 instructions") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunCommandStdin(t *testing.T) {
	out, _, err := execute(t, "on x=10..12,y=10..12,z=10..12\non x=11..13,y=11..13,z=11..13\n", "run", "-")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "Part 1: 46\nPart 2: 46\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunCommandRegionFlag(t *testing.T) {
	out, _, err := execute(t, "", "run", "--region-min", "10", "--region-max", "10", "examples/small.txt")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "Part 1: 1\nPart 2: 39\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunCommandWorkers(t *testing.T) {
	seq, _, err := execute(t, "", "run", "examples/larger.txt")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	par, _, err := execute(t, "", "run", "-w", "4", "--strict", "examples/larger.txt")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	firstTwo := func(s string) string {
		return strings.Join(strings.SplitN(s, "\n", 3)[:2], "\n")
	}
	if firstTwo(seq) != firstTwo(par) {
		t.Errorf("parallel output %q differs from sequential %q", firstTwo(par), firstTwo(seq))
	}
}

func TestRunCommandBadConfig(t *testing.T) {
	if _, _, err := execute(t, "", "run", "--kernel", "voxel", "examples/small.txt"); err == nil {
		t.Error("expected error for unknown kernel")
	}
	if _, _, err := execute(t, "", "run", "--log-level", "chatty", "examples/small.txt"); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestRunCommandConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reboot.yaml")
	writeFile(t, path, "region:\n  min: 11\n  max: 13\n")

	out, _, err := execute(t, "", "run", "-c", path, "examples/small.txt")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// The region is the second cube; only (11,11,11) was switched off.
	if !strings.HasPrefix(out, "Part 1: 26\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestEvalCommand(t *testing.T) {
	out, _, err := execute(t, "", "eval", "examples/lattice.zy")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if out != "Part 1: 480\nPart 2: 1728\n" {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestEvalCommandErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zy")
	writeFile(t, path, "(on 1 2)")

	_, errOut, err := execute(t, "", "eval", path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(errOut, "6 coordinates") {
		t.Errorf("stderr should list the eval error:\n%s", errOut)
	}
}

func TestMeshCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.glb")
	out, _, err := execute(t, "", "mesh", "examples/small.txt", "-o", path)
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	if !strings.Contains(out, "wrote ") {
		t.Errorf("unexpected output:\n%s", out)
	}
	doc, err := export.Open(path)
	if err != nil {
		t.Fatalf("export.Open: %v", err)
	}
	if len(doc.Meshes) == 0 {
		t.Error("GLB has no meshes")
	}

	merged := filepath.Join(t.TempDir(), "merged.glb")
	if _, _, err := execute(t, "", "mesh", "--merge", "examples/small.zy", "-o", merged); err != nil {
		t.Fatalf("mesh --merge: %v", err)
	}
	doc, err = export.Open(merged)
	if err != nil {
		t.Fatalf("export.Open: %v", err)
	}
	if len(doc.Meshes) != 1 {
		t.Errorf("merged GLB has %d meshes, want 1", len(doc.Meshes))
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.rbt")
	saved, _, err := execute(t, "", "snapshot", "save", "examples/larger.txt", "-o", path)
	if err != nil {
		t.Fatalf("snapshot save: %v", err)
	}
	loaded, _, err := execute(t, "", "snapshot", "load", path)
	if err != nil {
		t.Fatalf("snapshot load: %v", err)
	}
	if !strings.HasPrefix(loaded, "Part 1: 590784\n") {
		t.Errorf("unexpected load output:\n%s", loaded)
	}
	if !strings.HasPrefix(saved, loaded) {
		t.Errorf("save output %q should start with load output %q", saved, loaded)
	}
}

func TestSnapshotLoadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.rbt")
	writeFile(t, path, "not a snapshot")
	if _, _, err := execute(t, "", "snapshot", "load", path); err == nil {
		t.Error("expected error for garbage snapshot")
	}
}
