package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigName = "values_local"
)

// Config ...
type Config struct {
	Account string `mapstructure:"account"`
	DB      string `mapstructure:"db_dsn"`

	Blofin struct {
		APIKey     string `mapstructure:"api_key"`
		APISecret  string `mapstructure:"api_secret"`
		Passphrase string `mapstructure:"passphrase"`
		RestURL    string `mapstructure:"rest_url"`
		WssURL     string `mapstructure:"wss_url"`
	} `mapstructure:"blofin"`

	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`

	Jaeger struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"jaeger"`

	// Интервалы циклов
	IpcPingTimeMs   int    `mapstructure:"ipc_ping_time_ms"`     // heartbeat воркера
	MasterCycleMs   int    `mapstructure:"master_cycle_time_ms"` // глобальная сверка
	WatchdogTimeMs  int    `mapstructure:"watchdog_time_ms"`     // опрос job_control
	CandleMaxFetch  int    `mapstructure:"candle_max_fetch"`
	CandleImportMs  int    `mapstructure:"candle_import_time_ms"`
	InstrumentsSeed string `mapstructure:"instruments_seed"`
}

func (c *Config) WorkerInterval() time.Duration {
	return time.Duration(c.IpcPingTimeMs) * time.Millisecond
}

func (c *Config) MasterInterval() time.Duration {
	return time.Duration(c.MasterCycleMs) * time.Millisecond
}

func (c *Config) WatchdogInterval() time.Duration {
	return time.Duration(c.WatchdogTimeMs) * time.Millisecond
}

// NewConfig читает configs/<CONFIG_FILE>.yaml; окружение поверх файла.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	name := defaultConfigName
	if env := os.Getenv(configFileENV); env != "" {
		name = env
	}
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AutomaticEnv()

	v.SetDefault("ipc_ping_time_ms", 5000)
	v.SetDefault("master_cycle_time_ms", 2000)
	v.SetDefault("watchdog_time_ms", 3000)
	v.SetDefault("candle_max_fetch", 100)
	v.SetDefault("candle_import_time_ms", 5000)
	v.SetDefault("instruments_seed", "configs/instruments.yaml")
	v.SetDefault("blofin.rest_url", "https://openapi.blofin.com")
	v.SetDefault("blofin.wss_url", "wss://openapi.blofin.com/ws/private")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Секреты храним только в окружении, не в файле
	if key := os.Getenv("BLOFIN_API_KEY"); key != "" {
		cfg.Blofin.APIKey = key
	}
	if secret := os.Getenv("BLOFIN_API_SECRET"); secret != "" {
		cfg.Blofin.APISecret = secret
	}
	if phrase := os.Getenv("BLOFIN_PASSPHRASE"); phrase != "" {
		cfg.Blofin.Passphrase = phrase
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.DB = dsn
	}
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}

	return cfg, nil
}
