package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 服务配置
type Config struct {
	ServerPort string
	AppBaseURL string
	LogLevel   string

	DatabaseDSN string
	RedisAddr   string

	JWTSecret  string
	CronSecret string

	// 进程内调度默认关闭，由外部 cron 调用 /api/cron/*
	SchedulerEnabled bool
	// 定时任务（六段式，含秒）
	GenerationCron string
	ArchivalCron   string
	Timezone       string

	// 外部排班引擎
	GeneratorURL     string
	GeneratorAPIKey  string
	GeneratorTimeout time.Duration

	// 邮件
	MailAPIURL string
	MailAPIKey string
	MailFrom   string

	NotifyConcurrency int
}

// Load 读取 .env + 环境变量
func Load() (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		ServerPort:        v.GetString("SERVER_PORT"),
		AppBaseURL:        strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		RedisAddr:         v.GetString("REDIS_ADDRESS"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		CronSecret:        v.GetString("CRON_SECRET"),
		SchedulerEnabled:  v.GetBool("SCHEDULER_ENABLED"),
		GenerationCron:    v.GetString("GENERATION_CRON"),
		ArchivalCron:      v.GetString("ARCHIVAL_CRON"),
		Timezone:          v.GetString("TZ_NAME"),
		GeneratorURL:      v.GetString("GENERATOR_URL"),
		GeneratorAPIKey:   v.GetString("GENERATOR_API_KEY"),
		GeneratorTimeout:  v.GetDuration("GENERATOR_TIMEOUT"),
		MailAPIURL:        v.GetString("MAIL_API_URL"),
		MailAPIKey:        v.GetString("MAIL_API_KEY"),
		MailFrom:          v.GetString("MAIL_FROM"),
		NotifyConcurrency: v.GetInt("NOTIFY_CONCURRENCY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=storeshift port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("GENERATION_CRON", "0 0 6 * * 4")
	v.SetDefault("ARCHIVAL_CRON", "0 0 2 * * 1")
	v.SetDefault("TZ_NAME", "UTC")
	v.SetDefault("GENERATOR_TIMEOUT", 2*time.Minute)
	v.SetDefault("MAIL_FROM", "schedule@storeshift.local")
	v.SetDefault("NOTIFY_CONCURRENCY", 8)
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN 不能为空")
	}
	if c.NotifyConcurrency <= 0 {
		return fmt.Errorf("NOTIFY_CONCURRENCY 必须大于 0，当前 %d", c.NotifyConcurrency)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("无效时区 %q: %w", c.Timezone, err)
	}
	return nil
}

// Location 定时任务使用的时区
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
