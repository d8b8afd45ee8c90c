package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"3000"`

	// Arquivo SQLite único da aplicação
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./database.db"`

	// Endereço público do site, usado no sitemap
	SiteURL string `env:"SITE_URL" envDefault:"http://localhost:3000"`

	PublicDir  string `env:"PUBLIC_DIR" envDefault:"./public"`
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"./public/assets/images/uploads"`
	UploadsURL string `env:"UPLOADS_URL" envDefault:"/assets/images/uploads"`

	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SecureCookie  bool          `env:"SECURE_COOKIE" envDefault:"false"`

	CorsOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	SeedSampleData bool   `env:"SEED_SAMPLE_DATA" envDefault:"true"`
	AdminPassword  string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	// Destinatário dos avisos de novos contatos
	NotifyTo string `env:"LEADS_NOTIFY_TO"`
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
