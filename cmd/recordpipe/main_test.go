package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runArgs runs the command with an empty environment. Not parallel: run
// redirects the global logger.
func runArgs(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, func(string) string { return "" }, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_ExitCodes(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want int
	}{
		{name: "unknown flag", args: []string{"-nope"}, want: exitUsage},
		{name: "bad int", args: []string{"-files=x"}, want: exitUsage},
		{name: "help", args: []string{"-h"}, want: exitOK},
		{name: "invalid config", args: []string{"-chunk=0", "-sql"}, want: exitUsage},
		{name: "validate ok", args: []string{"-validate", "-create"}, want: exitOK},
		{name: "validate bad", args: []string{"-validate", "-load-mode=upsert"}, want: exitUsage},
		{name: "no stage", args: nil, want: exitOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if code, _, stderr := runArgs(t, c.args...); code != c.want {
				t.Fatalf("exit = %d, want %d; stderr:\n%s", code, c.want, stderr)
			}
		})
	}
}

func TestRun_InvalidConfigListsIssues(t *testing.T) {
	code, _, stderr := runArgs(t, "-progress=spinner", "-merge")
	if code != exitUsage {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stderr, "error: progress: unknown progress mode") {
		t.Fatalf("stderr missing issue:\n%s", stderr)
	}
}

func TestRun_UnknownDriverListsRegisteredKinds(t *testing.T) {
	code, _, stderr := runArgs(t, "-validate", "-sql", "-db_driver=oracle")
	if code != exitUsage {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stderr, `unknown driver "oracle" (want one of mssql, mysql, postgres, sqlite)`) {
		t.Fatalf("stderr missing driver list:\n%s", stderr)
	}
}

func TestRun_EndToEndSQLite(t *testing.T) {
	dir := t.TempDir()
	files := filepath.Join(dir, "files")
	artifact := filepath.Join(dir, "merged.txt")
	db := filepath.Join(dir, "records.db")

	code, stdout, stderr := runArgs(t,
		"-create", "-files=2", "-strings=3", "-seed=9",
		"-delete", "ZZZ",
		"-sql", "-db_driver=sqlite", "-dsn="+db, "-chunk=4",
		"-dir="+files, "-artifact="+artifact,
		"-progress=lines",
	)
	if code != exitOK {
		t.Fatalf("exit = %d; stderr:\n%s", code, stderr)
	}
	for _, want := range []string{
		"created 2 files x 3 lines",
		`dropped 0 lines containing "ZZZ"`,
		"merged 2 files into " + artifact + ": 6 lines",
		"batch 1: loaded 4 rows, 2 remaining",
		"batch 2: loaded 6 rows, 0 remaining",
		"loaded 6 of 6 rows into all_data in 2 batches",
		"table all_data now holds 6 rows",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	data, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 6 {
		t.Fatalf("artifact lines = %d, want 6", n)
	}
}

func TestRun_NothingToDo(t *testing.T) {
	dir := t.TempDir()
	code, stdout, stderr := runArgs(t,
		"-merge", "-sql", "-db_driver=sqlite", "-dsn="+filepath.Join(dir, "r.db"),
		"-dir="+filepath.Join(dir, "missing"), "-artifact="+filepath.Join(dir, "merged.txt"),
		"-progress=none",
	)
	if code != exitOK {
		t.Fatalf("exit = %d; stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "nothing to merge") || !strings.Contains(stdout, "nothing to load") {
		t.Fatalf("stdout:\n%s", stdout)
	}
}

func TestRun_BarModeAndFailure(t *testing.T) {
	dir := t.TempDir()
	// The files directory path is a regular file, so create fails.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := runArgs(t, "-create", "-files=1", "-strings=1", "-dir="+blocker)
	if code != exitFailure {
		t.Fatalf("exit = %d, want %d; stderr:\n%s", code, exitFailure, stderr)
	}
	if !strings.Contains(stderr, "create: ") {
		t.Fatalf("stderr missing stage error:\n%s", stderr)
	}

	code, stdout, stderr := runArgs(t, "-create", "-files=3", "-strings=2", "-dir="+filepath.Join(dir, "ok"))
	if code != exitOK {
		t.Fatalf("exit = %d; stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "creating files") {
		t.Fatalf("bar output missing:\n%s", stdout)
	}
}
