package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings for the demo harness binary (cmd/billiards-demo).
// The simulation kernel itself never reads the environment; these values only
// choose which canonical scenario to build and how far to evolve it.
type Config struct {
	Scenario     string
	EndTime      float64
	LogLevel     string
	CheckReplay  bool
	ReplayPoints int
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Scenario:     getEnv("BILLIARDS_SCENARIO", "galperin-pi"),
		EndTime:      getEnvFloat("BILLIARDS_END_TIME", 16),
		LogLevel:     getEnv("BILLIARDS_LOG_LEVEL", "info"),
		CheckReplay:  getEnv("BILLIARDS_CHECK_REPLAY", "") != "",
		ReplayPoints: getEnvInt("BILLIARDS_REPLAY_POINTS", 16),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
