package catalog

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is passed explicitly to the catalog collaborators. It is never
// read from or written to the process environment.
type Config struct {
	// APIKey is sent as a bearer token to the search and crop endpoints.
	APIKey string `env:"API_KEY"`
	// Endpoint is the base URL of the ASF search API.
	Endpoint string `env:"ENDPOINT" envDefault:"https://api.daac.asf.alaska.edu"`
	// CropSource is the GDAL path template of a single-polarisation image.
	// Placeholders: {endpoint} {id} {url} {date} {pol} {POL}.
	CropSource string        `env:"CROP_SOURCE" envDefault:"/vsicurl/{url}"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"60s"`
	MaxResults int           `env:"MAX_RESULTS" envDefault:"5000"`
}

// EnvPrefix is prepended to every Config variable name.
const EnvPrefix = "CATALOG_"

// LoadConfig reads CATALOG_* variables from a dotenv file. An empty path
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	vars := map[string]string{}
	if path != "" {
		var err error
		vars, err = godotenv.Read(path)
		if err != nil {
			return Config{}, fmt.Errorf("catalog: read %s: %w", path, err)
		}
	}
	return ParseConfig(vars)
}

// ParseConfig builds a Config from an explicit variable map.
func ParseConfig(vars map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{
		Environment: vars,
		Prefix:      EnvPrefix,
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("catalog: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields a search needs.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("catalog: endpoint is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("catalog: timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("catalog: max results must be at least 1, got %d", c.MaxResults)
	}
	return nil
}
