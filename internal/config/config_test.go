package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "development defaults are fine",
			config: Config{Port: "8080", Env: "development", DBName: "quill", DBPassword: "password"},
		},
		{
			name:        "missing port",
			config:      Config{Env: "development", DBName: "quill"},
			expectError: true,
		},
		{
			name:        "missing db name",
			config:      Config{Port: "8080", Env: "development"},
			expectError: true,
		},
		{
			name:        "production with default password",
			config:      Config{Port: "8080", Env: "production", DBName: "quill", DBPassword: "password"},
			expectError: true,
		},
		{
			name:   "production with strong password",
			config: Config{Port: "8080", Env: "production", DBName: "quill", DBPassword: "s3cure-and-long", DBSSLMode: "require"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_NAME")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_NAME", "quill_test")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "quill_test", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
}
