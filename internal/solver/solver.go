// Package solver решает плотные системы a·x = b через LU-разложение
// с частичным выбором главного элемента (gonum/LAPACK dgetrf + dgetrs).
package solver

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// Report описывает, как прошло разложение
type Report struct {
	// Singular выставляется, если при разложении встретился нулевой ведущий
	// элемент. Решение при этом все равно вычисляется и может быть неконечным.
	Singular bool
}

// Solve возвращает x такой, что a·x = b. a должна быть квадратной, а длина b
// равна числу строк a. Вырожденность не является ошибкой: разложение
// доводится до конца, а качество решения видно по невязке.
func Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, Report) {
	n, _ := a.Dims()

	lu := mat.DenseCopyOf(a)
	ipiv := make([]int, n)
	ok := lapack64.Getrf(lu.RawMatrix(), ipiv)

	x := mat.VecDenseCopyOf(b)
	raw := x.RawVector()
	rhs := blas64.General{Rows: n, Cols: 1, Stride: 1, Data: raw.Data}
	lapack64.Getrs(blas.NoTrans, lu.RawMatrix(), rhs, ipiv)

	return x, Report{Singular: !ok}
}

// ResidualNorm возвращает евклидову норму a·x − b
func ResidualNorm(a mat.Matrix, x, b mat.Vector) float64 {
	var r mat.VecDense
	r.MulVec(a, x)
	r.SubVec(&r, b)
	return floats.Norm(r.RawVector().Data, 2)
}
