package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clipsmith/clipsmith-backend/internal/pkg/envutil"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	JWTSecret   string

	// MaxPerContext caps stored recommendations per query hash.
	MaxPerContext int
}

// fileConfig is the optional YAML overlay (CONFIG_PATH). Values set in the
// file win over environment defaults.
type fileConfig struct {
	Port          string `yaml:"port"`
	ServiceName   string `yaml:"service_name"`
	Environment   string `yaml:"environment"`
	MaxPerContext int    `yaml:"max_per_context"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:          envutil.GetEnv("PORT", "8080"),
		ServiceName:   envutil.GetEnv("SERVICE_NAME", "clipsmith-backend"),
		Environment:   envutil.GetEnv("ENVIRONMENT", "development"),
		JWTSecret:     envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret"),
		MaxPerContext: envutil.GetEnvAsInt("RECS_MAX_PER_CONTEXT", 20),
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		return cfg
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Config file unreadable; using env config", "path", path, "error", err)
		return cfg
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		log.Warn("Config file invalid; using env config", "path", path, "error", err)
		return cfg
	}
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.ServiceName != "" {
		cfg.ServiceName = fc.ServiceName
	}
	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if fc.MaxPerContext > 0 {
		cfg.MaxPerContext = fc.MaxPerContext
	}
	log.Info("Config overlay applied", "path", path)
	return cfg
}

func (c Config) Addr() string { return fmt.Sprintf(":%s", c.Port) }
