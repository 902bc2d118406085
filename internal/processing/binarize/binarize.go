// Package binarize turns raw attribute matrices into binary matrices using a
// corridor and reduces binary matrices to per-class reference vectors.
package binarize

import (
	"fmt"

	"satpr/internal/models"
	"satpr/internal/processing/corridor"
)

// Matrix marks each cell true when the raw value lies inside the corridor of
// its attribute, bounds inclusive.
func Matrix(raw *models.AttributeMatrix, c *corridor.Corridor) *models.BinaryMatrix {
	if c.Attributes() != raw.Attributes {
		panic(fmt.Sprintf("binarize: corridor has %d attributes, class %q has %d",
			c.Attributes(), raw.Name, raw.Attributes))
	}

	data := make([]byte, len(raw.Data))
	for i, value := range raw.Data {
		if c.Contains(i%raw.Attributes, value) {
			data[i] = models.BitTrue
		} else {
			data[i] = models.BitFalse
		}
	}

	return &models.BinaryMatrix{
		Attributes:   raw.Attributes,
		Realizations: raw.Realizations,
		Data:         data,
	}
}

// All binarizes every class against the same corridor, preserving order.
func All(classes []*models.AttributeMatrix, c *corridor.Corridor) []*models.BinaryMatrix {
	out := make([]*models.BinaryMatrix, len(classes))
	for i, class := range classes {
		out[i] = Matrix(class, c)
	}
	return out
}

// ReferenceVector sets an attribute true when strictly more than half of the
// realizations are true there. Exactly half counts as false, and a matrix
// without realizations yields an all-false vector.
func ReferenceVector(b *models.BinaryMatrix) models.ReferenceVector {
	vector := make(models.ReferenceVector, b.Attributes)

	for a := 0; a < b.Attributes; a++ {
		count := 0
		for r := 0; r < b.Realizations; r++ {
			if b.True(a, r) {
				count++
			}
		}

		if count > b.Realizations/2 {
			vector[a] = models.BitTrue
		} else {
			vector[a] = models.BitFalse
		}
	}

	return vector
}

// ReferenceVectors builds one reference vector per binary matrix.
func ReferenceVectors(matrices []*models.BinaryMatrix) []models.ReferenceVector {
	out := make([]models.ReferenceVector, len(matrices))
	for i, m := range matrices {
		out[i] = ReferenceVector(m)
	}
	return out
}
