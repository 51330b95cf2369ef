package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain.
	KeyringService = "GraphIndex"

	// KeyringUser is the user identifier for credentials.
	KeyringUser = "default"

	// KeyringAuthTokenItem is the key for the VCS auth token.
	KeyringAuthTokenItem = "vcs-auth-token"
)

// KeyringManager handles secure credential storage in the OS keychain.
type KeyringManager struct {
	logger *slog.Logger
}

// NewKeyringManager creates a new keyring manager.
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: slog.Default().With("component", "keyring"),
	}
}

// SaveAPIKey stores the VCS auth token securely in the OS keychain:
//   - macOS: Keychain Access.app → "GraphIndex" → "vcs-auth-token"
//   - Windows: Credential Manager → "GraphIndex"
//   - Linux: Secret Service (requires libsecret)
func (km *KeyringManager) SaveAPIKey(token string) error {
	if token == "" {
		return fmt.Errorf("auth token cannot be empty")
	}

	err := keyring.Set(KeyringService, KeyringAuthTokenItem, token)
	if err != nil {
		km.logger.Error("failed to save auth token to keychain", "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}

	km.logger.Info("auth token saved to keychain", "service", KeyringService)
	return nil
}

// GetAPIKey retrieves the VCS auth token from the OS keychain.
func (km *KeyringManager) GetAPIKey() (string, error) {
	token, err := keyring.Get(KeyringService, KeyringAuthTokenItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		km.logger.Error("failed to get auth token from keychain", "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}

	km.logger.Debug("auth token retrieved from keychain")
	return token, nil
}

// DeleteAPIKey removes the VCS auth token from the OS keychain.
func (km *KeyringManager) DeleteAPIKey() error {
	err := keyring.Delete(KeyringService, KeyringAuthTokenItem)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		km.logger.Error("failed to delete auth token from keychain", "error", err)
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}

	km.logger.Info("auth token deleted from keychain")
	return nil
}

// SetAPIKey is an alias for SaveAPIKey.
func (km *KeyringManager) SetAPIKey(token string) error {
	return km.SaveAPIKey(token)
}

// IsAvailable checks if the OS keychain is available. Returns false on
// headless systems (CI/CD) where keychain isn't available.
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")

	if err == keyring.ErrNotFound {
		return true
	}
	if err != nil {
		km.logger.Debug("keychain not available", "error", err)
		return false
	}

	return true
}

// KeySourceInfo returns information about where the auth token is stored.
type KeySourceInfo struct {
	Source      string // "keychain", "config", "env", "env_file", "none"
	Secure      bool
	Recommended string
}

// GetAPIKeySource determines where the auth token is coming from.
func (km *KeyringManager) GetAPIKeySource(cfg *Config) KeySourceInfo {
	if os.Getenv("GRAPHINDEX_AUTH_TOKEN") != "" {
		return KeySourceInfo{
			Source:      "env",
			Secure:      true,
			Recommended: "Using environment variable (good for CI/CD)",
		}
	}

	keychainToken, _ := km.GetAPIKey()
	if keychainToken != "" {
		return KeySourceInfo{
			Source:      "keychain",
			Secure:      true,
			Recommended: "Stored securely in OS keychain",
		}
	}

	if cfg.Repository.AuthToken != "" {
		return KeySourceInfo{
			Source:      "config",
			Secure:      false,
			Recommended: "Plaintext storage detected. Consider storing the token in the OS keychain",
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		return KeySourceInfo{
			Source:      "env_file",
			Secure:      false,
			Recommended: "Using .env file (OK for CI/CD, consider keychain for local dev)",
		}
	}

	return KeySourceInfo{
		Source:      "none",
		Secure:      false,
		Recommended: "No auth token configured. Set GRAPHINDEX_AUTH_TOKEN or store one in the OS keychain",
	}
}

// MaskAPIKey masks a token for display, showing first 7 and last 4 chars.
func MaskAPIKey(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", token[:7], token[len(token)-4:])
}
