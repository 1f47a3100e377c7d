package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultTaskSourceURL  = "http://127.0.0.1:8000"
	DefaultRequestTimeout = 30 * time.Second
	DefaultServerPort     = "8000"
	DefaultDBPath         = "data/results.db"
	DefaultTaskSize       = 200
)

type Config struct {
	AgentLogFilePath  string
	ServerLogFilePath string
	TaskSourceURL     string
	RequestTimeout    time.Duration
	MetricsPort       string
	ServerPort        string
	DBPath            string
	TaskSize          int
	TaskLimit         int
}

var AppConfig *Config

// InitConfig загружает .env (если он есть) и читает переменные окружения в AppConfig
func InitConfig(configPath string) {
	AppConfig = &Config{}

	if _, err := os.Stat(configPath); err == nil {
		err := godotenv.Load(configPath)
		if err != nil {
			log.Fatal("Error loading .env file")
		}
	}

	AppConfig.AgentLogFilePath = os.Getenv("AGENT_LOG_FILE_PATH")
	AppConfig.ServerLogFilePath = os.Getenv("SERVER_LOG_FILE_PATH")
	AppConfig.MetricsPort = os.Getenv("METRICS_PORT")

	if os.Getenv("TASK_SOURCE_URL") != "" {
		AppConfig.TaskSourceURL = os.Getenv("TASK_SOURCE_URL")
	} else {
		AppConfig.TaskSourceURL = DefaultTaskSourceURL
	}

	if os.Getenv("REQUEST_TIMEOUT_MS") != "" {
		value, err := strconv.Atoi(os.Getenv("REQUEST_TIMEOUT_MS"))
		if err != nil || value <= 0 {
			log.Fatal("REQUEST_TIMEOUT_MS not a positive number")
		}
		AppConfig.RequestTimeout = time.Duration(value) * time.Millisecond
	} else {
		AppConfig.RequestTimeout = DefaultRequestTimeout
	}

	if os.Getenv("SERVER_PORT") != "" {
		AppConfig.ServerPort = os.Getenv("SERVER_PORT")
	} else {
		AppConfig.ServerPort = DefaultServerPort
	}

	if os.Getenv("DB_PATH") != "" {
		AppConfig.DBPath = os.Getenv("DB_PATH")
	} else {
		AppConfig.DBPath = DefaultDBPath
	}

	AppConfig.TaskSize = intFromEnv("TASK_SIZE", DefaultTaskSize)
	AppConfig.TaskLimit = intFromEnv("TASK_LIMIT", 0)
}

// intFromEnv читает неотрицательное целое; пустое значение означает def
func intFromEnv(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		log.Fatal(name + " not a non-negative number")
	}
	return value
}
