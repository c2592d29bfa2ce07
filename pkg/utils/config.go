package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Engine   EngineConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// EngineConfig holds the booking engine tunables.
type EngineConfig struct {
	DefaultCapacity    int     // quorum required before a court is committed
	LevelTolerance     float64 // +/- band fixed on a match by its first booking
	SlotMinutes        int     // duration of a generated slot
	GranularityMinutes int     // proposal start-time granularity
	LookbackMinutes    int     // precursor proposal window removed on confirmation
	DefaultOpenHour    int     // opening window fallback when a club has no bitmap
	DefaultCloseHour   int
	ConfigCacheTTLMins int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("ENGINE_DEFAULT_CAPACITY", 4)
	viper.SetDefault("ENGINE_LEVEL_TOLERANCE", 0.5)
	viper.SetDefault("ENGINE_SLOT_MINUTES", 60)
	viper.SetDefault("ENGINE_GRANULARITY_MINUTES", 30)
	viper.SetDefault("ENGINE_LOOKBACK_MINUTES", 60)
	viper.SetDefault("ENGINE_DEFAULT_OPEN_HOUR", 9)
	viper.SetDefault("ENGINE_DEFAULT_CLOSE_HOUR", 22)
	viper.SetDefault("ENGINE_CONFIG_CACHE_TTL_MINUTES", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Engine: EngineConfig{
			DefaultCapacity:    viper.GetInt("ENGINE_DEFAULT_CAPACITY"),
			LevelTolerance:     viper.GetFloat64("ENGINE_LEVEL_TOLERANCE"),
			SlotMinutes:        viper.GetInt("ENGINE_SLOT_MINUTES"),
			GranularityMinutes: viper.GetInt("ENGINE_GRANULARITY_MINUTES"),
			LookbackMinutes:    viper.GetInt("ENGINE_LOOKBACK_MINUTES"),
			DefaultOpenHour:    viper.GetInt("ENGINE_DEFAULT_OPEN_HOUR"),
			DefaultCloseHour:   viper.GetInt("ENGINE_DEFAULT_CLOSE_HOUR"),
			ConfigCacheTTLMins: viper.GetInt("ENGINE_CONFIG_CACHE_TTL_MINUTES"),
		},
	}

	return config, nil
}
