package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinimumProfitMargin float64
	DefaultProfitMargin float64
	OverheadPercent     float64
	LaborPercent        float64
	PackagingPercent    float64
	FixedCostReference  float64

	PricingTTLSeconds  int
	StrictReservations bool
	DefaultActorID     string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := strconv.Atoi(getEnv("PRICING_TTL_SECONDS", "300"))
	if err != nil || ttl < 1 {
		ttl = 300
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		MinimumProfitMargin: getEnvFloat("MINIMUM_PROFIT_MARGIN", 10),
		DefaultProfitMargin: getEnvFloat("DEFAULT_PROFIT_MARGIN", 30),
		OverheadPercent:     getEnvFloat("OVERHEAD_PERCENT", 15),
		LaborPercent:        getEnvFloat("LABOR_PERCENT", 20),
		PackagingPercent:    getEnvFloat("PACKAGING_PERCENT", 5),
		FixedCostReference:  getEnvFloat("FIXED_COST_REFERENCE", 1000),

		PricingTTLSeconds:  ttl,
		StrictReservations: getEnv("STRICT_RESERVATIONS", "false") == "true",
		DefaultActorID:     getEnv("DEFAULT_ACTOR_ID", "system"),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getEnvFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
