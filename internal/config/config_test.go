package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SkyType:           "mcclear",
		StartDate:         "2023-01-01",
		EndDate:           "2023-01-31",
		TimeStep:          "1h",
		TimeReference:     "UT",
		ServerName:        DefaultServer,
		Timeout:           30,
		Email:             "user@example.com",
		UnprocessedFolder: "unprocessed",
		ProcessedFolder:   "processed",
		ResultsFolder:     "results",
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := validConfig()
	require.NoError(t, cfg.Write(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidateReportsAllBadFieldsAtOnce(t *testing.T) {
	cfg := validConfig()
	cfg.SkyType = "cloudy"
	cfg.Email = "not-an-email"
	cfg.Timeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	// One error naming every violation, not just the first.
	assert.Contains(t, err.Error(), "SkyType")
	assert.Contains(t, err.Error(), "Email")
	assert.Contains(t, err.Error(), "Timeout")
}

func TestValidateRejectsReversedDateRange(t *testing.T) {
	cfg := validConfig()
	cfg.StartDate = "2023-02-01"
	cfg.EndDate = "2023-01-01"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before start_date")
}

func TestValidateAcceptsAllChoices(t *testing.T) {
	for _, step := range []string{"1min", "15min", "1h", "1d", "1M"} {
		cfg := validConfig()
		cfg.TimeStep = step
		assert.NoError(t, cfg.Validate(), "time_step %s", step)
	}
	for _, ref := range []string{"UT", "TST"} {
		cfg := validConfig()
		cfg.TimeReference = ref
		assert.NoError(t, cfg.Validate(), "time_reference %s", ref)
	}
}

func TestDateAccessors(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Start())
	assert.Equal(t, time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), cfg.End())
	assert.Equal(t, 30*time.Second, cfg.ClientTimeout())
}
