package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all static application configuration loaded from
// environment variables. Runtime-tunable monitoring settings live in
// Runtime instead.
type Config struct {
	// Feishu credentials
	FeishuWebhook     string // outgoing card webhook (required)
	FeishuAppID       string // app credentials enable replies + event callbacks
	FeishuAppSecret   string
	FeishuVerifyToken string

	// Infrastructure
	ListenAddr    string // webhook + websocket server
	MetricsAddr   string
	RedisAddr     string // empty disables the Redis hot layer
	RedisPassword string
	RedisDB       int
	SQLitePath    string

	// Monitoring
	StockList       string // comma-separated codes seeded at startup
	PositionsPath   string // JSON position book, empty disables overlays
	MarketHoursOnly bool   // skip cycles outside A-share sessions
	KLineBackfill   bool   // use daily K-lines while stored history is shallow
}

// Load reads configuration from environment variables with sensible
// defaults. Missing mandatory configuration terminates the process; this
// is the only fatal error in the system.
func Load() *Config {
	return &Config{
		FeishuWebhook:     mustEnv("FEISHU_WEBHOOK"),
		FeishuAppID:       getEnv("FEISHU_APP_ID", ""),
		FeishuAppSecret:   getEnv("FEISHU_APP_SECRET", ""),
		FeishuVerifyToken: getEnv("FEISHU_VERIFICATION_TOKEN", ""),

		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SQLitePath:    getEnv("SQLITE_PATH", "data/stock_monitor.db"),

		StockList:       getEnv("STOCK_LIST", ""),
		PositionsPath:   getEnv("POSITIONS_PATH", ""),
		MarketHoursOnly: getEnvBool("MARKET_HOURS_ONLY", false),
		KLineBackfill:   getEnvBool("KLINE_BACKFILL", false),
	}
}

// ParseStockList splits the STOCK_LIST env value into trimmed codes.
func (c *Config) ParseStockList() []string {
	parts := strings.Split(c.StockList, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		codes = append(codes, p)
	}
	return codes
}

// InitialSettings seeds the runtime settings from env overrides of the
// defaults. Values remain tunable afterwards through chat commands.
func InitialSettings() Settings {
	s := DefaultSettings()
	s.Interval = time.Duration(getEnvInt("CHECK_INTERVAL", int(s.Interval/time.Second))) * time.Second
	s.RSIPeriod = getEnvInt("RSI_PERIOD", s.RSIPeriod)
	s.Overbought = getEnvFloat("RSI_OVERBOUGHT", s.Overbought)
	s.Oversold = getEnvFloat("RSI_OVERSOLD", s.Oversold)
	s.ChangeThresholdPct = getEnvFloat("CHANGE_THRESHOLD", s.ChangeThresholdPct)
	s.VolumeRatioThreshold = getEnvFloat("VOLUME_RATIO_THRESHOLD", s.VolumeRatioThreshold)
	s.NotifyAlways = !strings.EqualFold(getEnv("NOTIFY_POLICY", "always"), "alerts")
	return s
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}
