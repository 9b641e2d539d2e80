package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_LiteLLMConfig(t *testing.T) {
	os.Setenv("LITELLM_PROXY_URL", "http://litellm:4000")
	os.Setenv("LITELLM_API_KEY", "test-key")
	os.Setenv("LITELLM_MODEL", "gpt-4o")
	defer func() {
		os.Unsetenv("LITELLM_PROXY_URL")
		os.Unsetenv("LITELLM_API_KEY")
		os.Unsetenv("LITELLM_MODEL")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "http://litellm:4000", cfg.LiteLLM.ProxyURL)
	assert.Equal(t, "test-key", cfg.LiteLLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LiteLLM.Model)
	assert.True(t, cfg.LiteLLM.Configured())
}

func TestLoad_LiteLLMNotConfigured(t *testing.T) {
	os.Unsetenv("LITELLM_PROXY_URL")
	os.Unsetenv("LITELLM_API_KEY")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.False(t, cfg.LiteLLM.Configured())
}

func TestLoad_AnalyticsDefaults(t *testing.T) {
	os.Unsetenv("ANALYTICS_DEFAULT_WINDOW_DAYS")
	os.Unsetenv("ANALYTICS_REVENUE_PER_VIEW")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 7, cfg.Analytics.DefaultWindowDays)
	assert.Equal(t, 365, cfg.Analytics.MaxWindowDays)
	assert.Equal(t, 0.002, cfg.Analytics.Heuristics.RevenuePerView)
	assert.Equal(t, float64(200), cfg.Analytics.Heuristics.ReadingWordsPerMin)
	assert.Equal(t, 65, cfg.Analytics.Heuristics.ScrollDepthPct)
}

func TestLoad_AnalyticsOverrides(t *testing.T) {
	os.Setenv("ANALYTICS_DEFAULT_WINDOW_DAYS", "30")
	os.Setenv("ANALYTICS_REVENUE_PER_VIEW", "0.005")
	defer func() {
		os.Unsetenv("ANALYTICS_DEFAULT_WINDOW_DAYS")
		os.Unsetenv("ANALYTICS_REVENUE_PER_VIEW")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 30, cfg.Analytics.DefaultWindowDays)
	assert.Equal(t, 0.005, cfg.Analytics.Heuristics.RevenuePerView)
}
