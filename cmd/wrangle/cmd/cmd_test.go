package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WRANGLE_CONFIG", "")
	t.Setenv("WRANGLE_LOG_LEVEL", "error")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "people.csv")
	data := "name,age,city\nAnn,17,Lisbon\nBo,,Porto\nCy,35,Porto\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspect(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	out, err := run(t, "inspect", "--file", path, "--rows", "2")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Kind", "number", "people.csv: 3 rows, 3 columns", "showing 2 of 3 rows"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestApplyThenReplay(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir)
	applied := filepath.Join(dir, "applied.csv")
	steps := filepath.Join(dir, "steps.yaml")

	out, err := run(t, "apply", "--file", path,
		"--code", `df.DropNA("age")`,
		"--code", `df.Filter("age >= 18")`,
		"--out", applied, "--recipe-out", steps)
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Step 2:") || !strings.Contains(out, "Saved 2 steps") {
		t.Errorf("apply output:\n%s", out)
	}
	got, err := os.ReadFile(applied)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "name,age,city\nCy,35,Porto\n" {
		t.Errorf("applied = %q", got)
	}

	replayed := filepath.Join(dir, "replayed.csv")
	out, err = run(t, "replay", "--file", path, "--recipe", steps, "--out", replayed)
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	again, err := os.ReadFile(replayed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, again) {
		t.Errorf("replay = %q, want %q", again, got)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "wrangle v"+Version) {
		t.Errorf("version output = %q", out)
	}
}
