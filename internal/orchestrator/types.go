package orchestrator

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// Errors
var (
	ErrQueueIsEmpty   = errors.New("queue is empty")
	ErrResultMismatch = errors.New("result does not match task")
)

// Границы случайного размера, когда TASK_SIZE = 0
const (
	minRandomSize = 300
	maxRandomSize = 3000
)

// Source - локальный источник задач для разработки и e2e-тестов.
// Очереди нет: каждая задача создается в момент запроса.
type Source struct {
	mu     sync.Mutex
	rng    *rand.Rand
	nextID int64
	issued int
	size   int // 0 - случайный размер из [minRandomSize, maxRandomSize)
	limit  int // 0 - без ограничения
}

// NewSource создает источник задач заданного размера
func NewSource(size, limit int, seed uint64) *Source {
	return &Source{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		size:  size,
		limit: limit,
	}
}

// Issued возвращает число выданных задач
func (s *Source) Issued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}
