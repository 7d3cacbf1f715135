package config

import "time"

// Config is the root device configuration.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
	Device   DeviceConfig   `yaml:"device"`
	Sync     SyncConfig     `yaml:"sync"`
	Log      LogConfig      `yaml:"log"`
}

// BackendConfig holds the PostgREST endpoint settings.
type BackendConfig struct {
	URL     string        `yaml:"url"     env:"BACKEND_URL"     env-required:"true"`
	APIKey  string        `yaml:"api_key" env:"BACKEND_API_KEY" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"30s"`
}

// DatabaseConfig holds the local store settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"validador.db"`
}

// DeviceConfig identifies this validating station.
type DeviceConfig struct {
	Name string `yaml:"name" env:"DEVICE_NAME"`
}

// SyncConfig holds reconciliation settings.
type SyncConfig struct {
	Interval time.Duration `yaml:"interval"  env:"SYNC_INTERVAL"  env-default:"5m"`
	PageSize int           `yaml:"page_size" env:"SYNC_PAGE_SIZE" env-default:"1000"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string        `yaml:"level"       env:"LOG_LEVEL"       env-default:"info"`
	File      string        `yaml:"file"        env:"LOG_FILE"`
	MaxSizeMB int           `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"10"`
	Retention time.Duration `yaml:"retention"   env:"LOG_RETENTION"   env-default:"720h"`
}
