package domain

import "time"

type Config struct {
	DataURL           string        `mapstructure:"data_url"`
	DataDir           string        `mapstructure:"data_dir"`
	IndexPath         string        `mapstructure:"index_path"`
	DBDir             string        `mapstructure:"db_dir"`
	DefaultYear       string        `mapstructure:"default_year"`
	DefaultSeason     Season        `mapstructure:"default_season"`
	CacheBust         bool          `mapstructure:"cache_bust"`
	HDImageSize       int           `mapstructure:"hd_image_size"`
	ExportDir         string        `mapstructure:"export_dir"`
	PreloadTimeout    time.Duration `mapstructure:"preload_timeout"`
	PreloadWorkers    int           `mapstructure:"preload_workers"`
	SourceURL         string        `mapstructure:"source_url"`
	BuildOnly         bool          `mapstructure:"build_only"`
	DiscordWebhookURL string        `mapstructure:"discord_webhook_url"`
	LogLevel          string        `mapstructure:"log_level"`
}
