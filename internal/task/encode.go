package task

import (
	"encoding/json"
	"math"

	"github.com/mailru/easyjson/jwriter"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gonum.org/v1/gonum/mat"
)

// EncodeVector возвращает JSON-массив чисел в порядке элементов.
// NaN и ±Inf в JSON непредставимы и пишутся как null.
func EncodeVector(x mat.Vector) []byte {
	w := jwriter.Writer{}
	writeVector(&w, x)
	return w.Buffer.BuildBytes()
}

// Encode собирает полную полезную нагрузку задачи в порядке
// identifier, size, a, b, x, time
func Encode(t *Task) ([]byte, error) {
	fields := orderedmap.New[string, json.RawMessage]()
	fields.Set(KeyIdentifier, encodeInt(t.Identifier))
	fields.Set(KeySize, encodeInt(int64(t.Size)))
	fields.Set(KeyA, encodeMatrix(t.A))
	fields.Set(KeyB, EncodeVector(t.B))
	if t.X != nil {
		fields.Set(KeyX, EncodeVector(t.X))
	} else {
		fields.Set(KeyX, EncodeVector(mat.NewVecDense(t.B.Len(), nil)))
	}
	fields.Set(KeyTime, encodeFloat(t.Time))
	return encodeFields(fields)
}

// encodeFields пишет объект в порядке ключей. Значения уже являются JSON
// и копируются как есть, без HTML-экранирования.
func encodeFields(fields *orderedmap.OrderedMap[string, json.RawMessage]) ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	w.RawByte('{')
	first := true
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			w.RawByte(',')
		}
		first = false
		w.String(pair.Key)
		w.RawByte(':')
		w.Raw(pair.Value, nil)
	}
	w.RawByte('}')
	return w.BuildBytes()
}

func encodeMatrix(a mat.Matrix) []byte {
	w := jwriter.Writer{}
	rows, _ := a.Dims()
	w.RawByte('[')
	for i := 0; i < rows; i++ {
		if i > 0 {
			w.RawByte(',')
		}
		writeVector(&w, rowVector(mat.Row(nil, i, a)))
	}
	w.RawByte(']')
	return w.Buffer.BuildBytes()
}

// vector покрывает и mat.Vector, и строку матрицы
type vector interface {
	Len() int
	AtVec(int) float64
}

type rowVector []float64

func (r rowVector) Len() int            { return len(r) }
func (r rowVector) AtVec(i int) float64 { return r[i] }

func writeVector(w *jwriter.Writer, v vector) {
	w.RawByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			w.RawByte(',')
		}
		writeFloat(w, v.AtVec(i))
	}
	w.RawByte(']')
}

func writeFloat(w *jwriter.Writer, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		w.RawString("null")
		return
	}
	w.Float64(v)
}

func encodeFloat(v float64) []byte {
	w := jwriter.Writer{}
	writeFloat(&w, v)
	return w.Buffer.BuildBytes()
}

func encodeInt(v int64) []byte {
	w := jwriter.Writer{}
	w.Int64(v)
	return w.Buffer.BuildBytes()
}
