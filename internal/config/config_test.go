package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func noEnv(string) string { return "" }

// TestLoadFromArgs_EnvDefaultsAndFlags checks the precedence model: env seeds
// defaults, explicit flags override env.
func TestLoadFromArgs_EnvDefaultsAndFlags(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"DB_DRIVER":  "sqlite",
		"DB_DSN":     "records.db",
		"CHUNK_SIZE": "12",
		"VERBOSE":    "yes",
		"SEED":       "42",
		"FILES":      "7",
	}
	getenv := func(k string) string { return env[k] }

	cfg, err := LoadFromArgs(newFlagSet(), getenv, []string{"-files=3", "-sql"})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "records.db", cfg.DSN)
	assert.Equal(t, 12, cfg.Chunk)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 3, cfg.Files, "flag wins over env")
	assert.True(t, cfg.SQL)
	assert.False(t, cfg.Create)
}

func TestLoadFromArgs_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromArgs(newFlagSet(), noEnv, nil)
	require.NoError(t, err)

	want := Defaults()
	assert.Equal(t, want, *cfg)
	assert.False(t, cfg.AnyStage())
}

func TestLoadFromArgs_DeletePresence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		args       []string
		wantDelete bool
		wantRemove string
	}{
		{name: "absent", args: nil},
		{name: "with value", args: []string{"-delete", "ab"}, wantDelete: true, wantRemove: "ab"},
		{name: "empty value", args: []string{"-delete="}, wantDelete: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, err := LoadFromArgs(newFlagSet(), noEnv, c.args)
			require.NoError(t, err)
			assert.Equal(t, c.wantDelete, cfg.Delete)
			assert.Equal(t, c.wantRemove, cfg.Remove)
			assert.Equal(t, c.wantDelete, cfg.RunMerge())
		})
	}
}

func TestLoadFromArgs_BadFlag(t *testing.T) {
	t.Parallel()

	_, err := LoadFromArgs(newFlagSet(), noEnv, []string{"-chunk=abc"})
	require.Error(t, err)

	_, err = LoadFromArgs(newFlagSet(), noEnv, []string{"-nope"})
	require.Error(t, err)
}

func TestLoadFromArgs_YAMLFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "recordpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
files: 5
strings: 50
verbose: true
db:
  driver: sqlite
  dsn: file.db
  chunk: 7
metrics:
  backend: datadog
`), 0o644))

	// file < env < flags
	env := map[string]string{"CHUNK_SIZE": "9"}
	cfg, err := LoadFromArgs(newFlagSet(), func(k string) string { return env[k] },
		[]string{"-config", path, "-strings=60"})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigPath)
	assert.Equal(t, 5, cfg.Files)
	assert.Equal(t, 60, cfg.Strings)
	assert.Equal(t, 9, cfg.Chunk)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file.db", cfg.DSN)
	assert.Equal(t, "datadog", cfg.MetricsBackend)
	assert.Equal(t, "all_data", cfg.Table, "unset keys keep defaults")
}

func TestLoadFromArgs_YAMLFromEnvAndErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("dir: elsewhere\n"), 0o644))
	cfg, err := LoadFromArgs(newFlagSet(), func(k string) string {
		if k == ConfigPathEnv {
			return good
		}
		return ""
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.Dir)

	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("filez: 3\n"), 0o644))
	_, err = LoadFromArgs(newFlagSet(), noEnv, []string{"--config=" + typo})
	require.ErrorContains(t, err, "parse")

	_, err = LoadFromArgs(newFlagSet(), noEnv, []string{"-config", filepath.Join(dir, "missing.yaml")})
	require.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadFromArgs(newFlagSet(), noEnv, []string{"-config", empty})
	require.NoError(t, err)
}

func TestWithDotEnv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER=mysql\nDB_TABLE=from_file\n"), 0o644))

	proc := map[string]string{"DB_DRIVER": "sqlite"}
	getenv, err := WithDotEnv(func(k string) string { return proc[k] }, path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", getenv("DB_DRIVER"), "process env wins")
	assert.Equal(t, "from_file", getenv("DB_TABLE"))
	assert.Empty(t, getenv("UNSET"))

	getenv, err = WithDotEnv(noEnv, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, getenv("DB_TABLE"))
}

func TestConfigPathFromArgs(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"a.yaml": {"-config", "a.yaml"},
		"b.yaml": {"-v", "--config=b.yaml"},
		"":       {"-create", "--", "-config", "c.yaml"},
	}
	for want, args := range cases {
		assert.Equal(t, want, configPathFromArgs(args), "args=%v", args)
	}
}
