package task

import (
	"fmt"
	"math"

	"github.com/buger/jsonparser"
	"gonum.org/v1/gonum/mat"
)

// buildMatrix строит плотную матрицу из массива массивов, проходя JSON
// построчно. Ширину задает первая строка, любая другая длина - ошибка.
func buildMatrix(raw []byte) (*mat.Dense, error) {
	var (
		data    []float64
		rows    int
		cols    int
		failure error
	)

	_, err := jsonparser.ArrayEach(raw, func(row []byte, dataType jsonparser.ValueType, _ int, err error) {
		if failure != nil {
			return
		}
		if err != nil {
			failure = err
			return
		}
		if dataType != jsonparser.Array {
			failure = fmt.Errorf("row %d: %w", rows, ErrNotNumeric)
			return
		}

		n := 0
		_, err = jsonparser.ArrayEach(row, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
			if failure != nil {
				return
			}
			v, perr := parseNumber(value, dataType, false)
			if perr != nil {
				failure = fmt.Errorf("[%d][%d]: %w", rows, n, perr)
				return
			}
			data = append(data, v)
			n++
		})
		if failure != nil {
			return
		}
		if err != nil {
			failure = fmt.Errorf("row %d: %w", rows, err)
			return
		}

		// Квадратность проверяет Build, поэтому память по первой строке не резервируется
		if rows == 0 {
			cols = n
		} else if n != cols {
			failure = fmt.Errorf("row %d has %d entries, want %d: %w", rows, n, cols, ErrRaggedRows)
			return
		}
		rows++
	})
	if failure != nil {
		return nil, failure
	}
	if err != nil {
		return nil, err
	}
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyMatrix
	}

	return mat.NewDense(rows, cols, data), nil
}

// buildVector читает плоский числовой массив
func buildVector(raw []byte, allowNull bool) ([]float64, error) {
	var (
		values  []float64
		failure error
	)

	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if failure != nil {
			return
		}
		if err != nil {
			failure = err
			return
		}
		v, perr := parseNumber(value, dataType, allowNull)
		if perr != nil {
			failure = fmt.Errorf("[%d]: %w", len(values), perr)
			return
		}
		values = append(values, v)
	})
	if failure != nil {
		return nil, failure
	}
	if err != nil {
		return nil, err
	}
	return values, nil
}

func parseNumber(value []byte, dataType jsonparser.ValueType, allowNull bool) (float64, error) {
	switch dataType {
	case jsonparser.Number:
		v, err := jsonparser.ParseFloat(value)
		if err != nil {
			return 0, ErrNotNumeric
		}
		return v, nil
	case jsonparser.Null:
		if allowNull {
			return math.NaN(), nil
		}
	}
	return 0, ErrNotNumeric
}
