package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/varoOP/seasonshare/internal/domain"
)

const (
	DefaultSourceURL      = "https://acgsecrets.hk/bangumi/"
	DefaultHDImageSize    = 600
	DefaultPreloadTimeout = 10 * time.Second
	DefaultPreloadWorkers = 4
)

// SetDefaults registers the default of every key on viper
func SetDefaults() {
	viper.SetDefault("data_dir", "./data")
	viper.SetDefault("db_dir", ".")
	viper.SetDefault("cache_bust", true)
	viper.SetDefault("hd_image_size", DefaultHDImageSize)
	viper.SetDefault("export_dir", ".")
	viper.SetDefault("preload_timeout", DefaultPreloadTimeout)
	viper.SetDefault("preload_workers", DefaultPreloadWorkers)
	viper.SetDefault("source_url", DefaultSourceURL)
	viper.SetDefault("log_level", "info")
}

// Load loads configuration from multiple sources:
// 1. Config file (config.yaml or $HOME/.seasonshare.yaml, optional)
// 2. Environment variables (SEASONSHARE_*)
// 3. Command line flags bound by the cli
func Load() (*domain.Config, error) {
	cfg := &domain.Config{
		DataURL:           strings.TrimSpace(viper.GetString("data_url")),
		DataDir:           viper.GetString("data_dir"),
		IndexPath:         viper.GetString("index_path"),
		DBDir:             viper.GetString("db_dir"),
		DefaultYear:       viper.GetString("default_year"),
		DefaultSeason:     domain.Season(viper.GetString("default_season")),
		CacheBust:         viper.GetBool("cache_bust"),
		HDImageSize:       viper.GetInt("hd_image_size"),
		ExportDir:         viper.GetString("export_dir"),
		PreloadTimeout:    viper.GetDuration("preload_timeout"),
		PreloadWorkers:    viper.GetInt("preload_workers"),
		SourceURL:         viper.GetString("source_url"),
		BuildOnly:         viper.GetBool("build_only"),
		DiscordWebhookURL: viper.GetString("discord_webhook_url"),
		LogLevel:          viper.GetString("log_level"),
	}

	if cfg.DefaultSeason != "" && !cfg.DefaultSeason.Valid() {
		return nil, fmt.Errorf("invalid default_season: %s (must be one of 冬, 春, 夏, 秋)", cfg.DefaultSeason)
	}
	if cfg.DefaultSeason != "" && cfg.DefaultYear == "" {
		return nil, fmt.Errorf("default_season requires default_year")
	}

	if cfg.DataURL == "" && cfg.DataDir == "" {
		return nil, fmt.Errorf("data_url or data_dir is required (set via config.yaml or SEASONSHARE_DATA_URL / SEASONSHARE_DATA_DIR environment variable)")
	}

	if cfg.IndexPath == "" {
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("index_path is required when data_dir is not set")
		}
		cfg.IndexPath = filepath.Join(cfg.DataDir, "index.yaml")
	}

	if cfg.HDImageSize <= 0 {
		cfg.HDImageSize = DefaultHDImageSize
	}
	if cfg.PreloadTimeout <= 0 {
		cfg.PreloadTimeout = DefaultPreloadTimeout
	}
	if cfg.PreloadWorkers <= 0 {
		cfg.PreloadWorkers = DefaultPreloadWorkers
	}

	return cfg, nil
}
