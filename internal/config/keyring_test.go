package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", "(not set)"},
		{"short", "abc123", "***"},
		{"normal", "ghp_1234567890abcdef", "ghp_123...cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskAPIKey(tt.token))
		})
	}
}

func TestKeyringManager_SaveAPIKey_EmptyRejected(t *testing.T) {
	km := NewKeyringManager()
	err := km.SaveAPIKey("")
	assert.Error(t, err)
}

func TestGetAPIKeySource_PrefersEnv(t *testing.T) {
	t.Setenv("GRAPHINDEX_AUTH_TOKEN", "env-token")

	km := NewKeyringManager()
	info := km.GetAPIKeySource(Default())

	assert.Equal(t, "env", info.Source)
	assert.True(t, info.Secure)
}

func TestGetAPIKeySource_NoneConfigured(t *testing.T) {
	km := NewKeyringManager()
	cfg := Default()

	info := km.GetAPIKeySource(cfg)
	assert.Contains(t, []string{"keychain", "none", "env_file"}, info.Source)
}
