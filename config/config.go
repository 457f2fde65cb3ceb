// Package config 加载服务的YAML配置
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"cyberguard/logger"
)

// Config 服务配置
type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
		RateLimit      float64       `yaml:"rate_limit"`
		RateBurst      int           `yaml:"rate_burst"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	ML struct {
		ModelType string `yaml:"model_type"`
		ModelPath string `yaml:"model_path"`
	} `yaml:"ml"`
	Feed struct {
		Replay int `yaml:"replay"`
	} `yaml:"feed"`
	Log logger.Config `yaml:"log"`
}

// Load 读取并解析配置文件，未设置的字段使用默认值
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	config.applyDefaults()
	return &config, nil
}

// Default 返回全部为默认值的配置
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8000
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 20
	}
	if c.Http.RateLimit == 0 {
		c.Http.RateLimit = 200
	}
	if c.Http.RateBurst == 0 {
		c.Http.RateBurst = 50
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.ML.ModelType == "" {
		c.ML.ModelType = "random_forest"
	}
	if c.ML.ModelPath == "" {
		c.ML.ModelPath = "model.json"
	}
	if c.Feed.Replay == 0 {
		c.Feed.Replay = 50
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File != "" {
		if c.Log.MaxSizeMB == 0 {
			c.Log.MaxSizeMB = 100
		}
		if c.Log.MaxBackups == 0 {
			c.Log.MaxBackups = 3
		}
		if c.Log.MaxAgeDays == 0 {
			c.Log.MaxAgeDays = 28
		}
	}
}
