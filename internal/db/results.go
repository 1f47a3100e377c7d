package db

import (
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrResultNotFound = errors.New("result not found")
)

// SaveResult сохраняет результат, присваивая ему ULID и время получения
func SaveResult(r *Result) error {
	DbMutex.Lock()
	defer DbMutex.Unlock()

	r.ID = ulid.Make().String()
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = time.Now().UTC()
	}

	// NaN в SQLite превращается в NULL, пишем его явно
	var residual sql.NullFloat64
	if !math.IsNaN(r.Residual) {
		residual = sql.NullFloat64{Float64: r.Residual, Valid: true}
	}

	_, err := DB.Exec(
		`INSERT INTO results (id, identifier, size, solve_time, residual, received_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Identifier, r.Size, r.SolveTime, residual, r.ReceivedAt,
	)
	return err
}

// GetResultByIdentifier возвращает последний результат для задачи
func GetResultByIdentifier(identifier int64) (*Result, error) {
	DbMutex.Lock()
	defer DbMutex.Unlock()

	row := DB.QueryRow(
		`SELECT id, identifier, size, solve_time, residual, received_at
         FROM results WHERE identifier = ?
         ORDER BY id DESC LIMIT 1`,
		identifier,
	)

	r, err := scanResult(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return r, nil
}

// ListResults возвращает результаты от новых к старым. limit <= 0 - без ограничения.
func ListResults(limit int) ([]*Result, error) {
	DbMutex.Lock()
	defer DbMutex.Unlock()

	if limit <= 0 {
		limit = -1
	}

	rows, err := DB.Query(
		`SELECT id, identifier, size, solve_time, residual, received_at
         FROM results ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*Result, error) {
	var r Result
	var residual sql.NullFloat64

	err := s.Scan(&r.ID, &r.Identifier, &r.Size, &r.SolveTime, &residual, &r.ReceivedAt)
	if err != nil {
		return nil, err
	}

	if residual.Valid {
		r.Residual = residual.Float64
	} else {
		r.Residual = math.NaN()
	}
	return &r, nil
}
