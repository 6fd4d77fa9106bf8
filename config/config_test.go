package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyJSONSections(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"app": {"AppPort": "8080", "SecretKey": "s3cret", "SessionHours": 12, "AdminMaxUserID": 3, "AllowedOrigins": ["https://a.test", "https://b.test"]},
		"gin": {"Mode": "debug", "LogPath": "var/gin.log"},
		"database": {"DatabaseURI": "sqlite://blog.db"},
		"smtp": {"SMTPHost": "smtp.test", "SMTPPort": 2525, "SMTPTLS": true, "ContactRecipient": "owner@blog.test"},
		"redis": {"RedisHost": "cache", "RedisDB": 2},
		"register": {"CaptchaEnabled": true, "CaptchaLength": 6, "CaptchaTTLMinutes": 3, "BcryptCost": 11}
	}`), &raw))

	var c AppConfig
	applyJSON(raw, &c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "s3cret", c.SecretKey)
	assert.Equal(t, 12, c.SessionHours)
	assert.EqualValues(t, 3, c.AdminMaxUserID)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, c.AllowedOrigins)
	assert.Equal(t, "debug", c.GinMode)
	assert.Equal(t, "var/gin.log", c.GinPath)
	assert.Equal(t, "sqlite://blog.db", c.DatabaseURI)
	assert.Equal(t, "smtp.test", c.SMTPHost)
	assert.Equal(t, 2525, c.SMTPPort)
	assert.True(t, c.SMTPTLS)
	assert.Equal(t, "owner@blog.test", c.ContactRecipient)
	assert.Equal(t, "cache", c.RedisHost)
	assert.Equal(t, 2, c.RedisDB)
	assert.True(t, c.RegisterCaptchaEnabled)
	assert.Equal(t, 6, c.CaptchaLength)
	assert.Equal(t, 3, c.CaptchaTTLMinutes)
	assert.Equal(t, 11, c.BcryptCost)
}

func TestApplyDefaults(t *testing.T) {
	c := AppConfig{AppPort: "9000"}
	applyDefaults(&c)

	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, 72, c.SessionHours)
	assert.EqualValues(t, 2, c.AdminMaxUserID)
	assert.Equal(t, "release", c.GinMode)
	assert.Equal(t, 30, c.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 587, c.SMTPPort)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.SecretKey)
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("ADMIN_MAX_USER_ID", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.test , ,https://b.test")
	t.Setenv("SMTP_TLS", "true")
	t.Setenv("DATABASE_URI", "postgres://blog@db/blog")

	c := AppConfig{SecretKey: "from-json", AdminMaxUserID: 2}
	applyEnvOverrides(&c)

	assert.Equal(t, "from-env", c.SecretKey)
	assert.EqualValues(t, 5, c.AdminMaxUserID)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, c.AllowedOrigins)
	assert.True(t, c.SMTPTLS)
	assert.Equal(t, "postgres://blog@db/blog", c.DatabaseURI)
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()

	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(dir, "missing.json"), &c))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	assert.Error(t, loadJSONConfig(bad, &c))

	good := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"app": {"SecretKey": "k"}}`), 0o600))
	require.NoError(t, loadJSONConfig(good, &c))
	assert.Equal(t, "k", c.SecretKey)
}

func TestOpenDatabaseSQLite(t *testing.T) {
	db, err := OpenDatabase(AppConfig{
		DatabaseURI: "sqlite://" + filepath.Join(t.TempDir(), "blog.db"),
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
