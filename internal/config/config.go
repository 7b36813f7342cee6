package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type OTPConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"` // validity window of login codes
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
	Enabled     bool   `yaml:"enabled"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	JWTSecret string         `yaml:"jwt_secret"`
	Files     FilesConfig    `yaml:"files"`
	OTP       OTPConfig      `yaml:"otp"`
	Telegram  TelegramConfig `yaml:"telegram"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	if cfg.OTP.TTLMinutes <= 0 {
		cfg.OTP.TTLMinutes = 10
	}
	return &cfg
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTP.TTLMinutes) * time.Minute
}
