package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "MBU", cfg.School.Code)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, 3, cfg.Notification.MaxRetries)
	assert.Empty(t, cfg.SMTP.Host)
	assert.Empty(t, cfg.Export.PDFFont)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SCHOOL_CODE", " abc ")
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("NOTIFY_TIMEOUT", "not-a-duration")
	v.Set("ADMIN_SEED_EMAIL", " Admin@School.Example ")
	v.Set("EXPORT_PDF_FONT", " /usr/share/fonts/DejaVuSans.ttf ")
	cfg := fromViper(v)

	assert.Equal(t, "ABC", cfg.School.Code)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, "admin@school.example", cfg.AdminSeed.Email)
	assert.Equal(t, "/usr/share/fonts/DejaVuSans.ttf", cfg.Export.PDFFont)
}
