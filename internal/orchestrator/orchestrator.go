package orchestrator

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"linear-solver/internal/db"
	"linear-solver/internal/logger"
	"linear-solver/internal/solver"
	"linear-solver/internal/task"
)

// NextTask создает следующую задачу и возвращает ее JSON.
// После TASK_LIMIT задач возвращает ErrQueueIsEmpty.
func (s *Source) NextTask() ([]byte, error) {
	s.mu.Lock()
	if s.limit > 0 && s.issued >= s.limit {
		s.mu.Unlock()
		return nil, ErrQueueIsEmpty
	}

	id := s.nextID
	s.nextID++
	s.issued++

	size := s.size
	if size == 0 {
		size = minRandomSize + s.rng.IntN(maxRandomSize-minRandomSize)
	}
	t := randomTask(s.rng, id, size)
	s.mu.Unlock()

	return task.Encode(t)
}

// randomTask заполняет a и b равномерно на [0, 1), x нулевой
func randomTask(rng *rand.Rand, id int64, size int) *task.Task {
	a := make([]float64, size*size)
	for i := range a {
		a[i] = rng.Float64()
	}
	b := make([]float64, size)
	for i := range b {
		b[i] = rng.Float64()
	}

	return &task.Task{
		Identifier: id,
		Size:       size,
		A:          mat.NewDense(size, size, a),
		B:          mat.NewVecDense(size, b),
		X:          mat.NewVecDense(size, nil),
	}
}

// ProcessResult разбирает присланное решение, пересчитывает невязку и сохраняет результат
func (s *Source) ProcessResult(body []byte) (*db.Result, error) {
	payload, err := task.Decode(body)
	if err != nil {
		return nil, err
	}

	t, err := payload.Build()
	if err != nil {
		return nil, err
	}

	x, err := payload.Vector(task.KeyX)
	if err != nil {
		return nil, err
	}
	n := t.B.Len()
	if len(x) != n {
		return nil, &task.DecodeError{Field: task.KeyX, Err: fmt.Errorf("%w: len(x) = %d, want %d", ErrResultMismatch, len(x), n)}
	}

	seconds, err := payload.Float(task.KeyTime)
	if err != nil {
		return nil, err
	}

	result := &db.Result{
		Identifier: t.Identifier,
		Size:       t.Size,
		SolveTime:  seconds,
		Residual:   solver.ResidualNorm(t.A, mat.NewVecDense(n, x), t.B),
	}

	if err := db.SaveResult(result); err != nil {
		return nil, fmt.Errorf("ошибка сохранения результата: %w", err)
	}

	logger.INFO.Printf("Задача %d решена за %.6f с, невязка %g", result.Identifier, result.SolveTime, result.Residual)
	return result, nil
}
