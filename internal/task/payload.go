package task

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gonum.org/v1/gonum/mat"
)

// Payload хранит разобранный JSON задачи. Все ключи и их порядок сохраняются,
// при повторной сериализации меняются только x и time.
type Payload struct {
	Identifier int64
	fields     *orderedmap.OrderedMap[string, json.RawMessage]
}

// Decode разбирает тело ответа и проверяет наличие identifier, a и b.
// Матрицы здесь не строятся, это делает Build.
func Decode(data []byte) (*Payload, error) {
	// jsonparser останавливается на закрывающей скобке и не видит хвост после объекта
	if !json.Valid(data) {
		return nil, &DecodeError{Err: ErrInvalidJSON}
	}

	fields := orderedmap.New[string, json.RawMessage]()
	if err := fields.UnmarshalJSON(data); err != nil {
		return nil, &DecodeError{Err: err}
	}

	for _, key := range []string{KeyIdentifier, KeyA, KeyB} {
		if _, ok := fields.Get(key); !ok {
			return nil, &DecodeError{Field: key, Err: ErrMissingField}
		}
	}

	raw, _ := fields.Get(KeyIdentifier)
	id, err := parseInteger(raw)
	if err != nil {
		return nil, &DecodeError{Field: KeyIdentifier, Err: err}
	}

	return &Payload{Identifier: id, fields: fields}, nil
}

// Build собирает матрицу a и вектор b и проверяет их размеры
func (p *Payload) Build() (*Task, error) {
	rawA, _ := p.fields.Get(KeyA)
	a, err := buildMatrix(rawA)
	if err != nil {
		return nil, &DecodeError{Field: KeyA, Err: err}
	}

	rawB, _ := p.fields.Get(KeyB)
	values, err := buildVector(rawB, false)
	if err != nil {
		return nil, &DecodeError{Field: KeyB, Err: err}
	}

	rows, cols := a.Dims()
	if rows != cols {
		return nil, &DecodeError{Field: KeyA, Err: ErrNotSquare}
	}
	if len(values) != rows {
		return nil, &DecodeError{Field: KeyB, Err: ErrShapeMismatch}
	}

	t := &Task{
		Identifier: p.Identifier,
		A:          a,
		B:          mat.NewVecDense(len(values), values),
	}
	// size только переносится, поэтому ошибка разбора не важна
	if raw, ok := p.fields.Get(KeySize); ok {
		if size, err := parseInteger(raw); err == nil {
			t.Size = int(size)
		}
	}
	return t, nil
}

// Vector читает числовой массив по ключу. null читается как NaN,
// так агент кодирует неконечные значения x.
func (p *Payload) Vector(key string) ([]float64, error) {
	raw, ok := p.fields.Get(key)
	if !ok {
		return nil, &DecodeError{Field: key, Err: ErrMissingField}
	}
	values, err := buildVector(raw, true)
	if err != nil {
		return nil, &DecodeError{Field: key, Err: err}
	}
	return values, nil
}

// Float читает числовое поле по ключу
func (p *Payload) Float(key string) (float64, error) {
	raw, ok := p.fields.Get(key)
	if !ok {
		return 0, &DecodeError{Field: key, Err: ErrMissingField}
	}
	v, err := jsonparser.ParseFloat(bytes.TrimSpace(raw))
	if err != nil {
		return 0, &DecodeError{Field: key, Err: ErrNotNumeric}
	}
	return v, nil
}

// Raw возвращает исходный JSON поля
func (p *Payload) Raw(key string) (json.RawMessage, bool) {
	return p.fields.Get(key)
}

// Keys возвращает ключи в исходном порядке
func (p *Payload) Keys() []string {
	keys := make([]string, 0, p.fields.Len())
	for pair := p.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// SetResult перезаписывает x и time. Если ключей не было, они добавляются в конец.
func (p *Payload) SetResult(x mat.Vector, seconds float64) {
	p.fields.Set(KeyX, EncodeVector(x))
	p.fields.Set(KeyTime, encodeFloat(seconds))
}

// Encode сериализует полезную нагрузку обратно в JSON.
// Значения прочих ключей пишутся теми же байтами, что пришли.
func (p *Payload) Encode() ([]byte, error) {
	return encodeFields(p.fields)
}

// parseInteger принимает целые и вещественные значения без дробной части
func parseInteger(raw []byte) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if v, err := jsonparser.ParseInt(raw); err == nil {
		return v, nil
	}
	f, err := jsonparser.ParseFloat(raw)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, ErrNotInteger
	}
	return int64(f), nil
}
