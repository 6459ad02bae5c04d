package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaultNeedsJWTKey(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt-key")

	cfg.JWTKey = "secret"
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	p := writeFile(t, `
addr: ":9443"
jwt-key: k
timezone: Asia/Seoul
cooldown: 12h
usage-retention: 0s
sweep-spec: "*/15 * * * *"
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, ":9443", cfg.Addr)
	require.Equal(t, 12*time.Hour, cfg.Cooldown)
	require.Zero(t, cfg.UsageRetention)
	require.Equal(t, "*/15 * * * *", cfg.SweepSpec)
	require.Equal(t, Default().DSN, cfg.DSN)
	require.Equal(t, 40, cfg.RateBurst)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Asia/Seoul", loc.String())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "addr: [unterminated"))
	require.Error(t, err)
}

func TestParse_FlagsOverrideFile(t *testing.T) {
	p := writeFile(t, "jwt-key: from-file\ncooldown: 2h\naddr: \":1000\"\n")

	cfg, err := Parse("test", []string{"-config", p, "-addr", ":2000", "-insecure"})
	require.NoError(t, err)
	require.Equal(t, ":2000", cfg.Addr)
	require.Equal(t, "from-file", cfg.JWTKey)
	require.Equal(t, 2*time.Hour, cfg.Cooldown)
	require.True(t, cfg.Insecure)
}

func TestParse_NoFile(t *testing.T) {
	cfg, err := Parse("test", []string{"-jwt-key", "k", "-cooldown", "90m"})
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, cfg.Cooldown)
	require.Equal(t, "@hourly", cfg.SweepSpec)

	_, err = Parse("test", []string{"-no-such-flag"})
	require.Error(t, err)
}

func TestValidate_Problems(t *testing.T) {
	cases := map[string]func(*Config){
		"dsn":             func(c *Config) { c.DSN = "" },
		"tls-cert":        func(c *Config) { c.TLSCert = "" },
		"timezone":        func(c *Config) { c.Timezone = "Mars/Olympus" },
		"cooldown":        func(c *Config) { c.Cooldown = 0 },
		"usage-retention": func(c *Config) { c.UsageRetention = -time.Hour },
		"sweep-spec":      func(c *Config) { c.SweepSpec = "every day" },
		"rate-burst":      func(c *Config) { c.RateBurst = 0 },
	}
	for want, mutate := range cases {
		t.Run(want, func(t *testing.T) {
			cfg := Default()
			cfg.JWTKey = "k"
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), want)
		})
	}
}

func TestValidate_InsecureSkipsTLS(t *testing.T) {
	cfg := Default()
	cfg.JWTKey = "k"
	cfg.TLSCert, cfg.TLSKey = "", ""
	cfg.Insecure = true
	require.NoError(t, cfg.Validate())
}
