package db

import (
	"time"
)

// Result представляет принятое решение одной задачи
type Result struct {
	ID         string    `json:"id"`
	Identifier int64     `json:"identifier"`
	Size       int       `json:"size"`
	SolveTime  float64   `json:"solve_time"` // секунды, как прислал агент
	Residual   float64   `json:"-"`          // может быть NaN, в JSON не отдается напрямую
	ReceivedAt time.Time `json:"received_at"`
}
