package profiletwin

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the twin's settings, read from PROFILE_TWIN_* variables.
type Config struct {
	Port          int    `envconfig:"PORT" default:"3000"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin"`
	Seed          int    `envconfig:"SEED" default:"40"`
	SeedFile      string `envconfig:"SEED_FILE"`
	SeedRandom    int64  `envconfig:"SEED_RANDOM" default:"1"`
}

// ResolveConfig loads Config from the environment.
func ResolveConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PROFILE_TWIN", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
