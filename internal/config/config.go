package config

import (
	"errors"
	"fmt"
	"os"

	"barberbot/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	API        APIConfig        `yaml:"api"`
	Bot        BotConfig        `yaml:"bot"`
	Admins     []int64          `yaml:"admins"`
	Services   []models.Service `yaml:"services"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	// Channel куда публикуются новые записи, например "@barberuzpro"
	Channel string `yaml:"channel"`
	Debug   bool   `yaml:"debug"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BotConfig struct {
	ReminderTime      string `yaml:"reminder_time"`
	RateLimitMessages int    `yaml:"rate_limit_messages"`
	RateLimitWindow   int    `yaml:"rate_limit_window"`
	// NotifyRPS ограничение на отправку уведомлений в Telegram
	NotifyRPS float64 `yaml:"notify_rps"`
	// ContactInfo текст кнопки "Aloqa": адрес, телефон, часы работы
	ContactInfo string `yaml:"contact_info"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile          string `yaml:"credentials_file"`
	AppointmentsSpreadsheetID string `yaml:"appointments_spreadsheet_id"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен: в проде переменные приходят из окружения
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expanded := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expanded, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	return ValidateServices(c.Services)
}

// ValidateServices проверяет прайс-лист: ключи уникальны, цены положительные.
func ValidateServices(services []models.Service) error {
	if len(services) == 0 {
		return errors.New("service catalog is empty")
	}

	seen := make(map[string]bool, len(services))
	for _, svc := range services {
		if svc.ID == "" {
			return fmt.Errorf("service %q has empty id", svc.Name)
		}
		if seen[svc.ID] {
			return fmt.Errorf("duplicate service id: %s", svc.ID)
		}
		if svc.Price <= 0 {
			return fmt.Errorf("service %s has non-positive price %d", svc.ID, svc.Price)
		}
		seen[svc.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Enabled && !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}

	if c.Bot.ReminderTime == "" {
		c.Bot.ReminderTime = "09:00"
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
	if c.Bot.NotifyRPS == 0 {
		c.Bot.NotifyRPS = 25
	}
	if c.Bot.ContactInfo == "" {
		c.Bot.ContactInfo = "Bizning ma'lumotlar:\n\n" +
			"📱 Telefon: +998 91 551 10 15\n" +
			"📍 Manzil: Samarqand, o'rdashev ko'chasi, 56\n" +
			"⏰ Ish vaqti: 09:00 - 21:00\n\n" +
			"Savollaringiz bo'lsa, iltimos bog'laning!"
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
