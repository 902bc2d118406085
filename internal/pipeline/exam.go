package pipeline

import (
	"fmt"

	"satpr/internal/algorithms/exam"
	"satpr/internal/models"
	"satpr/internal/processing/binarize"
)

// ExamReport is the outcome of examining one exam class.
type ExamReport struct {
	Class   int
	Name    string
	Binary  *models.BinaryMatrix
	Results []exam.Result
	Tally   exam.Tally
}

// Exam binarizes every exam class with the snapshot's corridor and classifies
// each of its realizations.
func (s *ClassificationState) Exam(classes []*models.AttributeMatrix) ([]ExamReport, error) {
	reports := make([]ExamReport, len(classes))
	for i, class := range classes {
		if class.Attributes != s.Corridor.Attributes() {
			return nil, &models.LoadError{
				Kind:           models.LoadSizeMismatch,
				Name:           class.Name,
				Width:          class.Attributes,
				Height:         class.Realizations,
				ExpectedWidth:  s.Corridor.Attributes(),
				ExpectedHeight: class.Realizations,
			}
		}

		binary := binarize.Matrix(class, s.Corridor)
		results := s.ExamRows(binary.Rows())
		reports[i] = ExamReport{
			Class:   i,
			Name:    class.Name,
			Binary:  binary,
			Results: results,
			Tally:   exam.Summarize(results, s.Classes()),
		}
	}
	return reports, nil
}

// ExamRows classifies already binarized realizations.
func (s *ClassificationState) ExamRows(rows [][]byte) []exam.Result {
	for i, row := range rows {
		if len(row) != s.Corridor.Attributes() {
			panic(fmt.Sprintf("pipeline: exam row %d has %d attributes, expected %d",
				i, len(row), s.Corridor.Attributes()))
		}
	}
	return exam.Exam(rows, s.References, s.Radii)
}
