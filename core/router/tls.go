package router

import (
	"fmt"
	"os"
)

// TLSConfig holds certificate paths for a TLS-terminating gRPC host.
// The adapter itself is wire-agnostic; hosts read this configuration at
// startup to configure their listeners.
type TLSConfig struct {
	// CertPath is the server certificate file (PEM).
	CertPath string
	// KeyPath is the server private key file (PEM).
	KeyPath string
	// ClientCAPath is the optional client CA certificate for mTLS.
	ClientCAPath string
}

// NewTLSConfig creates a TLS configuration from certificate and key paths.
func NewTLSConfig(certPath, keyPath string) *TLSConfig {
	return &TLSConfig{CertPath: certPath, KeyPath: keyPath}
}

// WithClientCA enables mutual TLS with the given client CA certificate.
func (c *TLSConfig) WithClientCA(path string) *TLSConfig {
	c.ClientCAPath = path
	return c
}

// TLSConfigFromEnv builds a TLS configuration from environment variables:
//
//   - GRPC_TLS_CERT or TLS_CERT_PATH - certificate path
//   - GRPC_TLS_KEY or TLS_KEY_PATH - key path
//   - GRPC_TLS_CLIENT_CA or TLS_CLIENT_CA_PATH - optional client CA path
//
// Returns false when cert or key is not configured.
func TLSConfigFromEnv() (*TLSConfig, bool) {
	certPath := envFirst("GRPC_TLS_CERT", "TLS_CERT_PATH")
	keyPath := envFirst("GRPC_TLS_KEY", "TLS_KEY_PATH")
	if certPath == "" || keyPath == "" {
		return nil, false
	}

	cfg := NewTLSConfig(certPath, keyPath)
	if caPath := envFirst("GRPC_TLS_CLIENT_CA", "TLS_CLIENT_CA_PATH"); caPath != "" {
		cfg.WithClientCA(caPath)
	}
	return cfg, true
}

// Load reads the certificate and key files.
func (c *TLSConfig) Load() (cert, key []byte, err error) {
	cert, err = os.ReadFile(c.CertPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load TLS certificate %s: %w", c.CertPath, err)
	}
	key, err = os.ReadFile(c.KeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load TLS key %s: %w", c.KeyPath, err)
	}
	return cert, key, nil
}

// LoadClientCA reads the client CA certificate if configured.
func (c *TLSConfig) LoadClientCA() ([]byte, error) {
	if c.ClientCAPath == "" {
		return nil, nil
	}
	ca, err := os.ReadFile(c.ClientCAPath)
	if err != nil {
		return nil, fmt.Errorf("load client CA %s: %w", c.ClientCAPath, err)
	}
	return ca, nil
}

func envFirst(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
