package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, "auth:\n  jwt_secret: test-secret-key-for-unit-testing\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望 port=8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Feature.HonorEffectiveDates {
		t.Error("honor_effective_dates 默认应为 false")
	}
	if !cfg.Feature.BackfillOnStartup {
		t.Error("backfill_on_startup 默认应为 true")
	}
	if cfg.Derivation.RebuildRateWindow != time.Minute {
		t.Errorf("期望 rebuild_rate_window=1m，实际=%s", cfg.Derivation.RebuildRateWindow)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, "auth:\n  jwt_secret: test-secret-key-for-unit-testing\n")
	t.Setenv("HRLMS_FEATURE_HONOR_EFFECTIVE_DATES", "true")
	t.Setenv("HRLMS_SERVER_PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if !cfg.Feature.HonorEffectiveDates {
		t.Error("环境变量应覆盖 honor_effective_dates")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"密钥为空", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"限流为负", func(c *Config) { c.Derivation.RebuildRateLimit = -1 }, true},
		{"限流窗口为零", func(c *Config) { c.Derivation.RebuildRateWindow = 0 }, true},
		{"关闭限流", func(c *Config) { c.Derivation.RebuildRateLimit = 0; c.Derivation.RebuildRateWindow = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Server:     ServerConfig{Port: 8080},
				Auth:       AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
				Derivation: DerivationConfig{RebuildRateLimit: 3, RebuildRateWindow: time.Minute},
			}
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
