package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands_InsertNearStats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.sqlite")
	base := []string{"--db", db, "--table", "cli_points", "--dim", "2"}

	for _, p := range []struct{ id, coords string }{
		{"1", "0.3,0.5"},
		{"2", "-0.3,0.5"},
		{"3", "[0.9, 1.5]"},
	} {
		out, err := run(t, append([]string{"insert", "--id", p.id, "--coords", p.coords}, base...)...)
		require.NoError(t, err)
		assert.Equal(t, "inserted "+p.id+"\n", out)
	}

	out, err := run(t, append([]string{"near", "--coords", "1.3,0.5", "--radius", "1"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run(t, append([]string{"near", "--coords", "0,0.5", "--radius", "5", "--index", "brute"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)

	out, err = run(t, append([]string{"stats"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "size=3 height=2 ideal_height=2\n", out)
}

func TestCommands_NearMetrics(t *testing.T) {
	db := filepath.Join(t.TempDir(), "metrics.sqlite")
	base := []string{"--db", db, "--table", "cli_metrics"}
	_, err := run(t, append([]string{"insert", "--id", "7", "--coords", "1,1"}, base...)...)
	require.NoError(t, err)

	out, err := run(t, append([]string{"near", "--coords", "1,1", "--radius", "0", "--metrics"}, base...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "7\n"), out)
	assert.Contains(t, out, `kd_index_queries_total{index="cli_metrics"} 1`)
	assert.Contains(t, out, `kd_index_points{index="cli_metrics"} 1`)
}

func TestCommands_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "err.sqlite")
	base := []string{"--db", db}

	_, err := run(t, append([]string{"insert", "--id", "1", "--coords", "1,2,3"}, base...)...)
	assert.Error(t, err)
	_, err = run(t, append([]string{"insert", "--id", "1", "--coords", "abc"}, base...)...)
	assert.Error(t, err)
	_, err = run(t, append([]string{"near", "--coords", "1,2", "--radius", "-1"}, base...)...)
	assert.Error(t, err)
	_, err = run(t, append([]string{"near", "--coords", "1,2", "--radius", "1", "--index", "cover"}, base...)...)
	assert.Error(t, err)
	_, err = run(t, append([]string{"stats", "--dim", "0"}, base...)...)
	assert.Error(t, err)
}

func TestCommands_NearEnforcesDimension(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dim.sqlite")
	base := []string{"--db", db, "--table", "cli_dim", "--dim", "2"}

	for _, kind := range []string{"kd", "brute"} {
		_, err := run(t, append([]string{"near", "--coords", "1,2,3", "--radius", "1", "--index", kind}, base...)...)
		assert.Error(t, err, "empty store, index %s", kind)
	}
	_, err := run(t, append([]string{"insert", "--id", "1", "--coords", "1,2"}, base...)...)
	require.NoError(t, err)
	for _, kind := range []string{"kd", "brute"} {
		_, err = run(t, append([]string{"near", "--coords", "1,2,3", "--radius", "1", "--index", kind}, base...)...)
		assert.Error(t, err, "index %s", kind)
		out, err := run(t, append([]string{"near", "--coords", "1,2", "--radius", "0", "--index", kind}, base...)...)
		require.NoError(t, err)
		assert.Equal(t, "1\n", out)
	}
}

func TestConfig_EnvironmentAndFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "env.sqlite")
	t.Setenv("KDTREE_DB", db)
	t.Setenv("KDTREE_DIM", "3")

	_, err := run(t, "insert", "--id", "1", "--coords", "1,2,3")
	require.NoError(t, err)

	cfgFile := filepath.Join(dir, "kdtree.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("table: points\n"), 0o644))
	out, err := run(t, "stats", "--config", cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "size=1 height=1 ideal_height=1\n", out)
}
