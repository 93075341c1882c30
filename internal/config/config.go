package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	KeyPartyCapacity = "PARTY_CAPACITY"
	KeyDefaultLocale = "DEFAULT_LOCALE"
)

type Config struct {
	Token             string
	GuildID           string
	DatabasePath      string
	AppEnv            string
	MetricsAddr       string
	ControlRole       string
	PartyCapacity     int
	Location          *time.Location
	QuestCacheTTL     time.Duration
	QuestSeedPath     string
	SchedulerInterval time.Duration
	DefaultLocale     string
}

var ErrTokenRequired = errors.New("DISCORD_BOT_TOKEN is required")

// Load は .env と環境変数から設定を読み込む
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	config := &Config{
		Token:         get("DISCORD_BOT_TOKEN", ""),
		GuildID:       get("GUILD_ID", ""),
		DatabasePath:  get("DATABASE_PATH", "./data/bot.db"),
		AppEnv:        get("APP_ENV", "development"),
		MetricsAddr:   get("METRICS_ADDR", ""),
		ControlRole:   get("BOT_CONTROL_ROLE", "gbf_bot_control"),
		QuestSeedPath: get("QUEST_SEED_PATH", ""),
		DefaultLocale: get(KeyDefaultLocale, "ja"),
	}

	var err error
	if config.PartyCapacity, err = parseCapacity(get(KeyPartyCapacity, "6")); err != nil {
		return nil, err
	}
	if config.Location, err = time.LoadLocation(get("TIMEZONE", "Asia/Tokyo")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if config.QuestCacheTTL, err = parseDuration("QUEST_CACHE_TTL", get("QUEST_CACHE_TTL", "10m")); err != nil {
		return nil, err
	}
	if config.SchedulerInterval, err = parseDuration("SCHEDULER_INTERVAL", get("SCHEDULER_INTERVAL", "1m")); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate はボットの起動に必要な値が揃っているかを確認する
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrTokenRequired
	}
	return nil
}

func parseCapacity(value string) (int, error) {
	capacity, err := strconv.Atoi(value)
	if err != nil || capacity <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", KeyPartyCapacity, value)
	}
	return capacity, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return d, nil
}
