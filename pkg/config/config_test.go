package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, 5*time.Minute, cfg.Upstream.GenerateTimeout)
	require.Equal(t, 2*time.Minute, cfg.Upstream.DownloadTimeout)
	require.Equal(t, 2*time.Minute, cfg.Upstream.EmailTimeout)
	require.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	require.Equal(t, 40, cfg.Imports.PreviewLimit)
	require.False(t, cfg.Reference.CacheEnabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("UPSTREAM_BASE_URL", " http://convocations.local/api/ ")
	v.Set("UPSTREAM_GENERATE_TIMEOUT", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("IMPORT_PREVIEW_LIMIT", -3)

	cfg := fromViper(v)
	require.Equal(t, "http://convocations.local/api", cfg.Upstream.BaseURL)
	require.Equal(t, 5*time.Minute, cfg.Upstream.GenerateTimeout)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, 40, cfg.Imports.PreviewLimit)
}
