package models

import (
	"fmt"
)

const (
	// BitFalse and BitTrue are the byte encodings of a binary cell, chosen so a
	// BinaryMatrix can be rendered directly as a grayscale image.
	BitFalse byte = 0
	BitTrue  byte = 255
)

// AttributeMatrix is one class of raw measurements: Attributes columns by
// Realizations rows, stored row-major by realization. The cell for attribute a
// of realization r lives at Data[r*Attributes+a].
type AttributeMatrix struct {
	Name         string
	Attributes   int
	Realizations int
	Data         []byte
}

// NewAttributeMatrix copies raw into a new matrix of width attributes and
// height realizations.
func NewAttributeMatrix(name string, raw []byte, width, height int) (*AttributeMatrix, error) {
	if width <= 0 || height <= 0 {
		return nil, &LoadError{Kind: LoadEmpty, Name: name, Width: width, Height: height}
	}
	if len(raw) != width*height {
		return nil, fmt.Errorf("class %q: %d bytes do not fill a %dx%d matrix", name, len(raw), width, height)
	}

	data := make([]byte, len(raw))
	copy(data, raw)

	return &AttributeMatrix{
		Name:         name,
		Attributes:   width,
		Realizations: height,
		Data:         data,
	}, nil
}

func (m *AttributeMatrix) At(attribute, realization int) byte {
	return m.Data[realization*m.Attributes+attribute]
}

// Row returns the attributes of one realization. The slice aliases the matrix.
func (m *AttributeMatrix) Row(realization int) []byte {
	start := realization * m.Attributes
	return m.Data[start : start+m.Attributes : start+m.Attributes]
}

// Equal reports whether both matrices carry bit-identical data of the same shape.
func (m *AttributeMatrix) Equal(other *AttributeMatrix) bool {
	if m.Attributes != other.Attributes || m.Realizations != other.Realizations {
		return false
	}
	for i := range m.Data {
		if m.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// BinaryMatrix has the shape of the AttributeMatrix it was derived from and
// holds only BitFalse or BitTrue.
type BinaryMatrix struct {
	Attributes   int
	Realizations int
	Data         []byte
}

func (b *BinaryMatrix) True(attribute, realization int) bool {
	return b.Data[realization*b.Attributes+attribute] == BitTrue
}

// Row returns the bits of one realization. The slice aliases the matrix.
func (b *BinaryMatrix) Row(realization int) []byte {
	start := realization * b.Attributes
	return b.Data[start : start+b.Attributes : start+b.Attributes]
}

// Rows splits the matrix into per-realization slices, preserving order.
func (b *BinaryMatrix) Rows() [][]byte {
	rows := make([][]byte, b.Realizations)
	for r := range rows {
		rows[r] = b.Row(r)
	}
	return rows
}

// ReferenceVector is the binary centroid of a class, one cell per attribute.
type ReferenceVector []byte

func (v ReferenceVector) True(attribute int) bool {
	return v[attribute] == BitTrue
}

// Strip repeats the vector height times so it can be rendered as an image.
func (v ReferenceVector) Strip(height int) []byte {
	out := make([]byte, 0, len(v)*height)
	for i := 0; i < height; i++ {
		out = append(out, v...)
	}
	return out
}
