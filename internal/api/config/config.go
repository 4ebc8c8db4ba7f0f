package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从 ./configs 加载配置并填充到 Cfg
func LoadConfig() error {
	cfg, err := LoadConfigFrom("./configs")
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// LoadConfigFrom 从指定目录读取 config.yaml，环境变量 BULLETIN_* 可覆盖
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("BULLETIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.trusted_proxies", []string{"localhost"})
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("jwt.issuer", "Bulletin")
	v.SetDefault("storage.provider", "minio")
	v.SetDefault("publish.upload_timeout", 30*time.Second)
	v.SetDefault("publish.write_timeout", 5*time.Second)
	v.SetDefault("publish.compensation_timeout", 10*time.Second)
	v.SetDefault("publish.max_upload_size", int64(20<<20))
	v.SetDefault("publish.max_tags", 10)
}
