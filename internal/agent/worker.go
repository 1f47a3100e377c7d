package agent

import (
	"context"
	"time"

	"linear-solver/internal/logger"
	"linear-solver/internal/solver"
	"linear-solver/internal/task"
)

// Worker выполняет цикл GET → parse → build → solve → encode → POST.
// Итерации строго последовательны, общего состояния между ними нет.
type Worker struct {
	client TaskClient
}

func NewWorker(client TaskClient) *Worker {
	return &Worker{client: client}
}

// RunOnce выполняет одну итерацию и возвращает ее отчет.
// Любая ошибка фатальна для цикла; при ошибке разбора POST не выполняется.
func (w *Worker) RunOnce(ctx context.Context) (*Report, error) {
	var timings Timings

	start := time.Now()
	body, err := w.client.FetchTask(ctx)
	timings.Fetch = time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	payload, err := task.Decode(body)
	timings.Parse = time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	t, err := payload.Build()
	timings.Build = time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	x, solveReport := solver.Solve(t.A, t.B)
	timings.Solve = time.Since(start)

	residual := solver.ResidualNorm(t.A, x, t.B)

	start = time.Now()
	payload.SetResult(x, timings.Solve.Seconds())
	out, err := payload.Encode()
	timings.Encode = time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	err = w.client.SubmitResult(ctx, out)
	timings.Submit = time.Since(start)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Identifier: t.Identifier,
		Size:       t.Size,
		Timings:    timings,
		Residual:   residual,
		Singular:   solveReport.Singular,
	}
	observe(report)
	return report, nil
}

// Run крутит итерации до первой ошибки или отмены ctx.
// Отмена проверяется между итерациями: начатые GET и POST доживают до своего таймаута.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			logger.LogINFO("Agent stopped")
			return nil
		}

		report, err := w.RunOnce(context.WithoutCancel(ctx))
		if err != nil {
			return err
		}

		logger.INFO.Println(report)
		if report.Singular {
			logger.INFO.Printf("Task %d: matrix is singular, x is not meaningful", report.Identifier)
		}
	}
}
