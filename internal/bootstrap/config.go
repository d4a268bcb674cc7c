package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort     string        `mapstructure:"SERVER_PORT"`
	RedisUrl       string        `mapstructure:"REDIS_URL"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	MongoUri       string        `mapstructure:"MONGO_URI"`
	MongoDatabase  string        `mapstructure:"MONGO_DATABASE"`
	IsLocalCors    bool          `mapstructure:"LOCAL_CORS"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	PageLimitGames int           `mapstructure:"PAGE_LIMIT_GAMES"`
}

// Setup reads the env file at cfgPath. A missing file is not an error: every
// key has a default and can be overridden from the environment.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(cfgPath)
	v.SetConfigType("env")

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "goban")
	v.SetDefault("LOCAL_CORS", false)
	v.SetDefault("SESSION_TTL", "72h")
	v.SetDefault("PAGE_LIMIT_GAMES", 20)
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
