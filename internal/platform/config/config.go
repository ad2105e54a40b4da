package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del servicio.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Auth     AuthConfig
	Notify   NotifyConfig
	Workflow WorkflowConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN           string // vacío => repos in-memory
	MigrationsDir string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig apunta al identity provider externo.
// Si BaseURL está vacío, el servicio corre en modo dev (X-Debug-User-ID).
type AuthConfig struct {
	BaseURL string
	AnonKey string

	// BootstrapAdmin siembra un actor admin al arrancar. Es la única
	// forma de tener el primer admin: el registro nunca otorga admin.
	BootstrapAdmin string
}

// NotifyConfig apunta al dispatcher de notificaciones (best-effort).
type NotifyConfig struct {
	WebhookURL string
}

type WorkflowConfig struct {
	// Timeout para adquirir exclusividad por mascota.
	// Vencido el timeout, la operación falla como retryable (Unavailable).
	PetLockTimeout time.Duration
}

// Load lee config desde archivo opcional + env. Prefijo de env: ADOPTION_.
// Ej: ADOPTION_DATABASE_DSN, ADOPTION_SERVER_PORT, ADOPTION_LOG_LEVEL.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.migrations_dir", "migrations")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("auth.base_url", "")
	v.SetDefault("auth.anon_key", "")
	v.SetDefault("auth.bootstrap_admin", "")
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("workflow.pet_lock_timeout", 3*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ADOPTION")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// el archivo es opcional; env siempre aplica
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
