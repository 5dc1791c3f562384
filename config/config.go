package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Sim      SimConfig      `mapstructure:"sim"`
	Scenario ScenarioConfig `mapstructure:"scenario"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SimConfig struct {
	DayIntervalMs int `mapstructure:"day_interval_ms"`
	BattlePaceMs  int `mapstructure:"battle_pace_ms"`
	SaveIntervalS int `mapstructure:"save_interval_s"`
}

type ScenarioConfig struct {
	Seed              int64 `mapstructure:"seed"` // 0 = random
	Width             int   `mapstructure:"width"`
	Height            int   `mapstructure:"height"`
	Countries         int   `mapstructure:"countries"`
	CastlesPerCountry int   `mapstructure:"castles_per_country"`
	VassalsPerCastle  int   `mapstructure:"vassals_per_castle"`
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/tenka.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("sim.day_interval_ms", 1000)
	v.SetDefault("sim.battle_pace_ms", 200)
	v.SetDefault("sim.save_interval_s", 300)
	v.SetDefault("scenario.width", 48)
	v.SetDefault("scenario.height", 48)
	v.SetDefault("scenario.countries", 6)
	v.SetDefault("scenario.castles_per_country", 3)
	v.SetDefault("scenario.vassals_per_castle", 2)
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
