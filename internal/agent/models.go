package agent

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
)

// Стадии одной итерации
const (
	StageFetch  = "fetch"
	StageParse  = "parse"
	StageBuild  = "build"
	StageSolve  = "solve"
	StageEncode = "encode"
	StageSubmit = "submit"
)

var stages = []string{StageFetch, StageParse, StageBuild, StageSolve, StageEncode, StageSubmit}

// TransportError - соединение не установлено, оборвалось или истек таймаут
type TransportError struct {
	Op  string // GET или POST
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError - источник задач ответил статусом, отличным от 200
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s status: %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s status: %d: %s", e.Op, e.StatusCode, body)
}

// RPCStatusError - аналог HTTPStatusError для gRPC-транспорта
type RPCStatusError struct {
	Op      string
	Code    codes.Code
	Message string
}

func (e *RPCStatusError) Error() string {
	return fmt.Sprintf("%s status: %s: %s", e.Op, e.Code, e.Message)
}

// Timings - длительности стадий одной итерации
type Timings struct {
	Fetch  time.Duration
	Parse  time.Duration
	Build  time.Duration
	Solve  time.Duration
	Encode time.Duration
	Submit time.Duration
}

// ByStage возвращает длительность по имени стадии
func (t Timings) ByStage(stage string) time.Duration {
	switch stage {
	case StageFetch:
		return t.Fetch
	case StageParse:
		return t.Parse
	case StageBuild:
		return t.Build
	case StageSolve:
		return t.Solve
	case StageEncode:
		return t.Encode
	case StageSubmit:
		return t.Submit
	}
	return 0
}

// Report - результат успешной итерации
type Report struct {
	Identifier int64
	Size       int
	Timings    Timings
	Residual   float64
	Singular   bool
}

func (r *Report) String() string {
	return fmt.Sprintf("Task %d | GET %s | parse %s | build %s | solve %s | encode %s | POST %s | residual %g",
		r.Identifier,
		ms(r.Timings.Fetch),
		ms(r.Timings.Parse),
		ms(r.Timings.Build),
		ms(r.Timings.Solve),
		ms(r.Timings.Encode),
		ms(r.Timings.Submit),
		r.Residual,
	)
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
}
