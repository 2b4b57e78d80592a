package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/path/to.sock)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	CartTTLMinutes int    `env:"CART_TTL_MINUTES" envDefault:"60"`

	BotToken   string `env:"BOT_TOKEN"`
	BotAPIBase string `env:"BOT_API_BASE" envDefault:"https://api.telegram.org"`

	ManagerChatID   int64   `env:"MANAGER_CHAT_ID"`
	ExtraManagerIDs []int64 `env:"EXTRA_MANAGER_IDS" envSeparator:","`

	MerchantID     string `env:"FK_MERCHANT_ID"`
	MerchantSecret string `env:"FK_SECRET"`

	AdminToken string `env:"ADMIN_TOKEN"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
