package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimeoutMS  = 15000
	defaultPageSize   = 100
	defaultTTLMinutes = 60
)

// Load reads and validates configuration. When path is empty the usual
// locations are tried in order.
func Load(path string) (Config, error) {
	paths := []string{"config.yml", "config.yaml"}
	if path != "" {
		paths = []string{path}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyEnvOverrides()
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the file for the values
// that differ between deployments. The CLI loads .env beforehand.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TRANSITMAP_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TRANSITMAP_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("TRANSITMAP_VEHICLE_POSITIONS_URL"); v != "" {
		c.Realtime.VehiclePositionsURL = v
	}
}

func (c *Config) applyDefaults() {
	if c.API.TimeoutMS == 0 {
		c.API.TimeoutMS = defaultTimeoutMS
	}
	if c.API.PageSize == 0 {
		c.API.PageSize = defaultPageSize
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = defaultTTLMinutes
	}
	if c.Cache.SmallPath == "" {
		c.Cache.SmallPath = ".transit-map/lists.json"
	}
	if c.Cache.BulkDir == "" {
		c.Cache.BulkDir = ".transit-map/geometry"
	}
}
