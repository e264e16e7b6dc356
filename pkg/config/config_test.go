package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, time.Hour, cfg.Scheduling.SessionLength)
	assert.Equal(t, 2*time.Hour, cfg.Scheduling.MinLeadTime)
	assert.Equal(t, 14, cfg.Scheduling.CalendarDays)
	assert.False(t, cfg.Mail.Enabled)
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULING_SESSION_LENGTH", "45m")
	t.Setenv("SCHEDULING_CALENDAR_DAYS", "21")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.Scheduling.SessionLength)
	assert.Equal(t, 21, cfg.Scheduling.CalendarDays)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}

func TestSchedulingLoadLocation(t *testing.T) {
	loc, err := SchedulingConfig{Location: "Local"}.LoadLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = SchedulingConfig{Location: "UTC"}.LoadLocation()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
