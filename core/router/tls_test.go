package router_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-source-os/allframe/core/router"
)

// Environment-dependent tests cannot run in parallel.

func TestTLSConfigFromEnv(t *testing.T) {
	t.Run("absent when not configured", func(t *testing.T) {
		t.Setenv("GRPC_TLS_CERT", "")
		t.Setenv("TLS_CERT_PATH", "")
		t.Setenv("GRPC_TLS_KEY", "")
		t.Setenv("TLS_KEY_PATH", "")

		_, ok := router.TLSConfigFromEnv()
		assert.False(t, ok)
	})

	t.Run("primary variables", func(t *testing.T) {
		t.Setenv("GRPC_TLS_CERT", "/etc/tls/server.crt")
		t.Setenv("GRPC_TLS_KEY", "/etc/tls/server.key")
		t.Setenv("GRPC_TLS_CLIENT_CA", "/etc/tls/ca.crt")

		cfg, ok := router.TLSConfigFromEnv()
		require.True(t, ok)
		assert.Equal(t, "/etc/tls/server.crt", cfg.CertPath)
		assert.Equal(t, "/etc/tls/server.key", cfg.KeyPath)
		assert.Equal(t, "/etc/tls/ca.crt", cfg.ClientCAPath)
	})

	t.Run("fallback variables", func(t *testing.T) {
		t.Setenv("TLS_CERT_PATH", "/srv/tls/cert.pem")
		t.Setenv("TLS_KEY_PATH", "/srv/tls/key.pem")

		cfg, ok := router.TLSConfigFromEnv()
		require.True(t, ok)
		assert.Equal(t, "/srv/tls/cert.pem", cfg.CertPath)
		assert.Equal(t, "/srv/tls/key.pem", cfg.KeyPath)
		assert.Empty(t, cfg.ClientCAPath)
	})

	t.Run("cert without key is incomplete", func(t *testing.T) {
		t.Setenv("GRPC_TLS_CERT", "/etc/tls/server.crt")
		t.Setenv("GRPC_TLS_KEY", "")
		t.Setenv("TLS_KEY_PATH", "")

		_, ok := router.TLSConfigFromEnv()
		assert.False(t, ok)
	})
}

func TestTLSConfigLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certPath, []byte("CERT"), 0o600))
	require.NoError(t, os.WriteFile(keyPath, []byte("KEY"), 0o600))

	cfg := router.NewTLSConfig(certPath, keyPath)
	cert, key, err := cfg.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("CERT"), cert)
	assert.Equal(t, []byte("KEY"), key)

	// No client CA configured.
	ca, err := cfg.LoadClientCA()
	require.NoError(t, err)
	assert.Nil(t, ca)

	cfg.WithClientCA(filepath.Join(dir, "missing.crt"))
	_, err = cfg.LoadClientCA()
	assert.Error(t, err)
}
