package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicyEmptyPath(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	assert.False(t, policy.RestrictToCreator)
}

func TestLoadPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("records:\n  restrict_to_creator: true\n"), 0o644))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.True(t, policy.RestrictToCreator)
}

func TestLoadPolicyErrors(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("records: [not a mapping"), 0o644))
	_, err = LoadPolicy(path)
	assert.Error(t, err)
}
