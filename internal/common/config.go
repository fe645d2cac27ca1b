package common

// Config is the application configuration, loaded once at startup
// from a TOML file into this struct-of-structs shape.
type Config struct {
	Environment string       `toml:"environment"` // "development" or "production"
	Server      ServerConfig `toml:"server"`
	HTTP        HTTPConfig   `toml:"http"`
	Storage     StorageConfig `toml:"storage"`
	Taxonomy    TaxonomyConfig `toml:"taxonomy"`
	Logging     LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// HTTPConfig configures C2's fetcher.
type HTTPConfig struct {
	BaseURL              string `toml:"base_url"`               // default "https://mops.twse.com.tw"
	UserAgent            string `toml:"user_agent"`
	MinRequestIntervalMS int    `toml:"min_request_interval_ms"` // default 1000
	TimeoutSeconds       int    `toml:"timeout_seconds"`          // default 30; not passed to the fetcher, which always uses 30s
	MaxBodyBytes         int64  `toml:"max_body_bytes"`           // default 50MB, spec.md §5
	CABundlePath         string `toml:"ca_bundle_path"`           // optional private CA override
}

// StorageConfig configures C9's repository.
type StorageConfig struct {
	SQLitePath    string `toml:"sqlite_path"`
	MaxOpenConns  int    `toml:"max_open_conns"` // default 10, spec.md §5
}

// TaxonomyConfig configures C6's local cache.
type TaxonomyConfig struct {
	CacheDir  string `toml:"cache_dir"`
	IndexPath string `toml:"index_path"` // badgerhold directory
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config populated with the defaults spec.md names
// explicitly (§4.2, §4.9, §5), for use when a value is absent from the
// loaded TOML file.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server:      ServerConfig{Port: 8080, Host: "0.0.0.0"},
		HTTP: HTTPConfig{
			BaseURL:              "https://mops.twse.com.tw",
			UserAgent:            "Mozilla/5.0 (compatible; mops-financial-api/1.0)",
			MinRequestIntervalMS: 1000,
			TimeoutSeconds:       30,
			MaxBodyBytes:         50 * 1024 * 1024,
		},
		Storage: StorageConfig{
			SQLitePath:   "./data/mops.db",
			MaxOpenConns: 10,
		},
		Taxonomy: TaxonomyConfig{
			CacheDir:  "./data/taxonomy",
			IndexPath: "./data/taxonomy-index",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
