package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"shelter-roster-sync/internal/domain/animals"
)

// Config del servicio. Precedencia: flags (cobra) > env > .env > archivo > defaults.
type Config struct {
	Port  string
	DBDSN string

	BatchSize   int
	HTTPTimeout time.Duration

	ShelterLuvBaseURL      string
	ShelterLuvPageSize     int
	ShelterLuvDeactivation animals.DeactivationMode

	ASMBaseURL      string
	ASMDeactivation animals.DeactivationMode

	// Vacío => object store en memoria.
	StorageBucket string

	DispatchConcurrency int

	ConfigFile string
}

var defaults = map[string]any{
	"PORT":                    "8080",
	"DB_DSN":                  "",
	"ROSTER_BATCH_SIZE":       499,
	"ROSTER_HTTP_TIMEOUT":     "30s",
	"SHELTERLUV_BASE_URL":     "https://www.shelterluv.com",
	"SHELTERLUV_PAGE_SIZE":    100,
	"SHELTERLUV_DEACTIVATION": string(animals.DeactivationDeactivate),
	"ASM_BASE_URL":            "https://service.sheltermanager.com/asmservice",
	"ASM_DEACTIVATION":        string(animals.DeactivationDelete),
	"STORAGE_BUCKET":          "",
	"DISPATCH_CONCURRENCY":    4,
}

// Load lee .env/.env.local, el archivo opcional (yaml/json/toml) y el entorno.
func Load(configFile string) (*Config, error) {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout := v.GetDuration("ROSTER_HTTP_TIMEOUT")
	if timeout <= 0 {
		return nil, fmt.Errorf("ROSTER_HTTP_TIMEOUT must be a positive duration, got %q", v.GetString("ROSTER_HTTP_TIMEOUT"))
	}

	cfg := &Config{
		Port:                   v.GetString("PORT"),
		DBDSN:                  v.GetString("DB_DSN"),
		BatchSize:              v.GetInt("ROSTER_BATCH_SIZE"),
		HTTPTimeout:            timeout,
		ShelterLuvBaseURL:      v.GetString("SHELTERLUV_BASE_URL"),
		ShelterLuvPageSize:     v.GetInt("SHELTERLUV_PAGE_SIZE"),
		ShelterLuvDeactivation: animals.DeactivationMode(strings.ToLower(v.GetString("SHELTERLUV_DEACTIVATION"))),
		ASMBaseURL:             v.GetString("ASM_BASE_URL"),
		ASMDeactivation:        animals.DeactivationMode(strings.ToLower(v.GetString("ASM_DEACTIVATION"))),
		StorageBucket:          v.GetString("STORAGE_BUCKET"),
		DispatchConcurrency:    v.GetInt("DISPATCH_CONCURRENCY"),
		ConfigFile:             v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate revisa rangos; no completa defaults.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 || c.BatchSize > 500 {
		return fmt.Errorf("ROSTER_BATCH_SIZE must be in 1..500, got %d", c.BatchSize)
	}
	if c.ShelterLuvPageSize <= 0 {
		return fmt.Errorf("SHELTERLUV_PAGE_SIZE must be positive, got %d", c.ShelterLuvPageSize)
	}
	if c.DispatchConcurrency <= 0 {
		return fmt.Errorf("DISPATCH_CONCURRENCY must be positive, got %d", c.DispatchConcurrency)
	}
	for name, m := range map[string]animals.DeactivationMode{
		"SHELTERLUV_DEACTIVATION": c.ShelterLuvDeactivation,
		"ASM_DEACTIVATION":        c.ASMDeactivation,
	} {
		if m != animals.DeactivationDelete && m != animals.DeactivationDeactivate {
			return fmt.Errorf("%s must be delete or deactivate, got %q", name, m)
		}
	}
	return nil
}

// Addr devuelve la dirección de escucha del servidor HTTP.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
