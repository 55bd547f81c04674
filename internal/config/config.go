package config

import (
	"flag"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config — конфигурация сервера. Значения из окружения имеют приоритет,
// флаги заполняют незаданное, затем применяются значения по умолчанию.
type Config struct {
	RunAddr     string `env:"RUN_ADDR"`
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	TokenTTLHours int    `env:"TOKEN_TTL_HOURS"`
	RedisURL      string `env:"REDIS_URL"`

	// Каталоги хранения картинок: закрытый — для найденных предметов
	// (выдача только через /secure-image), открытый — для потерянных.
	PrivateUploadDir string `env:"PRIVATE_UPLOAD_DIR"`
	PublicUploadDir  string `env:"PUBLIC_UPLOAD_DIR"`
	PlaceholderPath  string `env:"PLACEHOLDER_PATH"`

	ImageMaxMB int `env:"IMAGE_MAX_MB"`

	// Допустимые почтовые домены кампуса, через запятую.
	AllowedEmailDomains string `env:"ALLOWED_EMAIL_DOMAINS"`
}

// NewConfig читает .env, окружение и флаги.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "адрес и порт сервера")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или путь к sqlite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "redis URL для событий уведомлений (пусто — писать в лог)")
	flag.StringVar(&cfg.PrivateUploadDir, "private-uploads", cfg.PrivateUploadDir, "каталог закрытых картинок")
	flag.StringVar(&cfg.PublicUploadDir, "public-uploads", cfg.PublicUploadDir, "каталог открытых картинок")
	flag.StringVar(&cfg.PlaceholderPath, "placeholder", cfg.PlaceholderPath, "путь к картинке-заглушке")
	flag.IntVar(&cfg.TokenTTLHours, "token-ttl", cfg.TokenTTLHours, "срок жизни токена, часов")
	flag.IntVar(&cfg.ImageMaxMB, "image-max-mb", cfg.ImageMaxMB, "лимит размера картинки, МБ")
	flag.Parse()

	// Defaults
	if cfg.RunAddr == "" {
		cfg.RunAddr = "localhost:8080"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "lostfound.db"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.TokenTTLHours <= 0 {
		cfg.TokenTTLHours = 72
	}
	if cfg.PrivateUploadDir == "" {
		cfg.PrivateUploadDir = "private/uploads"
	}
	if cfg.PublicUploadDir == "" {
		cfg.PublicUploadDir = "public/uploads"
	}
	if cfg.PlaceholderPath == "" {
		cfg.PlaceholderPath = "public/images/placeholder.jpg"
	}
	if cfg.ImageMaxMB <= 0 {
		cfg.ImageMaxMB = 5
	}
	if cfg.AllowedEmailDomains == "" {
		cfg.AllowedEmailDomains = "vitstudent.ac.in,vit.ac.in"
	}

	return cfg
}

// EmailDomains возвращает список допустимых почтовых доменов.
func (c *Config) EmailDomains() []string {
	parts := strings.Split(c.AllowedEmailDomains, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if d := strings.TrimSpace(p); d != "" {
			out = append(out, d)
		}
	}
	return out
}
