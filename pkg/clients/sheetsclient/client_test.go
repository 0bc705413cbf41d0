package sheetsclient

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingCredentialsFile(t *testing.T) {
	_, err := NewClient(context.Background(), "/nonexistent/service_account.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read service account file")
}

func TestNewClient_MalformedCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service_account.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewClient(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse service account credentials")
}
