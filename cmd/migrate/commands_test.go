package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { migrationsPath = "" })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCreateThenList(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "create", "--path", dir, "add post tags")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "000001_add_post_tags.up.sql"))

	out, err = run(t, "list", "--path", dir)
	require.NoError(t, err)
	assert.Equal(t, "000001  add_post_tags\n", out)
}

func TestListEmbedded(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "000001  identity")
	assert.Contains(t, out, "000003  invoices")
	assert.NotContains(t, out, "no down")
}

func TestArgumentValidation(t *testing.T) {
	_, err := run(t, "steps", "zero")
	assert.Error(t, err)

	_, err = run(t, "goto", "-1")
	assert.Error(t, err)

	_, err = run(t, "down")
	assert.ErrorContains(t, err, "--yes")
}
