package task

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ключи полезной нагрузки
const (
	KeyIdentifier = "identifier"
	KeySize       = "size"
	KeyA          = "a"
	KeyB          = "b"
	KeyX          = "x"
	KeyTime       = "time"
)

// Errors
var (
	ErrInvalidJSON   = errors.New("payload is not a single JSON value")
	ErrMissingField  = errors.New("missing required field")
	ErrNotInteger    = errors.New("not an integer")
	ErrNotNumeric    = errors.New("non-numeric entry")
	ErrRaggedRows    = errors.New("rows are not of uniform length")
	ErrNotSquare     = errors.New("matrix is not square")
	ErrShapeMismatch = errors.New("vector length does not match matrix rows")
	ErrEmptyMatrix   = errors.New("matrix is empty")
)

// Task представляет собой одну линейную систему a·x = b
type Task struct {
	Identifier int64
	Size       int // подсказка размерности, не используется при решении
	A          *mat.Dense
	B          *mat.VecDense
	X          *mat.VecDense
	Time       float64 // время решения в секундах
}

// DecodeError возвращается, когда полезная нагрузка не является корректной задачей
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode task: %v", e.Err)
	}
	return fmt.Sprintf("decode task: field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
