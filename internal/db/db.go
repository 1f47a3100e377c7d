package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	DB      *sql.DB
	DbMutex sync.Mutex
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
    id          TEXT PRIMARY KEY,
    identifier  INTEGER NOT NULL,
    size        INTEGER NOT NULL,
    solve_time  REAL NOT NULL,
    residual    REAL,
    received_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_identifier ON results (identifier);
`

// InitDB инициализирует соединение с базой данных SQLite
func InitDB(dbPath string) error {
	// Проверка, что директория для базы данных существует
	if dbPath != ":memory:" {
		dbDir := filepath.Dir(dbPath)
		if _, err := os.Stat(dbDir); os.IsNotExist(err) {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	var err error

	// Открываем соединение с базой данных
	DB, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// Каждое соединение к :memory: - своя база
	DB.SetMaxOpenConns(1)

	// Проверяем соединение
	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = ApplySchema(); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

func CloseDB() error {
	if DB != nil {
		err := DB.Close()
		DB = nil
		return err
	}
	return nil
}

// ApplySchema создает таблицы, если их еще нет
func ApplySchema() error {
	_, err := DB.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
