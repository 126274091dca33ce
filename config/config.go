package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinJWTSecretLength HS256 签名密钥的最小长度
const MinJWTSecretLength = 16

// Config 应用程序配置
type Config struct {
	APIPort  int           `env:"PORT" envDefault:"8080"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  LogFileConfig `envPrefix:"LOG_FILE_"`
	Database DatabaseConfig
	Auth     AuthConfig
}

// DatabaseConfig MySQL数据库配置
type DatabaseConfig struct {
	Host         string        `env:"DB_HOST" envDefault:"localhost"`
	Port         int           `env:"DB_PORT" envDefault:"3306"`
	User         string        `env:"DB_USER"`
	Password     string        `env:"DB_PASS"`
	DBName       string        `env:"DB_NAME"`
	PoolSize     int           `env:"DB_POOL_SIZE" envDefault:"10"`     // 最大连接数，超出时排队等待
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"` // 单条查询超时
}

// AuthConfig 令牌配置，有效期固定为 8 小时
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled    bool   `env:"ENABLED" envDefault:"false"`
	Path       string `env:"PATH" envDefault:"./logs/app.log"`
	MaxSize    int    `env:"MAX_SIZE" envDefault:"100"` // 单位MB
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"7"`
	MaxAge     int    `env:"MAX_AGE" envDefault:"30"` // 单位天
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
}

// Load 从 .env 文件和环境变量加载配置
func Load() (*Config, error) {
	// .env 文件可选，缺失时只读取环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return parse()
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.Auth.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes long, got %d", MinJWTSecretLength, len(cfg.Auth.JWTSecret))
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}

	return cfg, nil
}
