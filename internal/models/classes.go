package models

import (
	"fmt"
	"sync"
)

// ClassSet is an index-addressed arena of loaded classes sharing one shape.
// The first class added fixes the shape; later classes must match it and must
// not duplicate an existing class.
type ClassSet struct {
	mu      sync.RWMutex
	classes []*AttributeMatrix
}

// NewClassSet creates an empty set.
func NewClassSet() *ClassSet {
	return &ClassSet{classes: make([]*AttributeMatrix, 0)}
}

// Add appends a class and returns its index.
func (s *ClassSet) Add(class *AttributeMatrix) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if class.Attributes <= 0 || class.Realizations <= 0 {
		return -1, &LoadError{Kind: LoadEmpty, Name: class.Name, Width: class.Attributes, Height: class.Realizations}
	}

	for i, existing := range s.classes {
		if existing.Equal(class) {
			return -1, &LoadError{Kind: LoadDuplicate, Name: class.Name, DuplicateOf: i}
		}
	}

	if len(s.classes) > 0 {
		first := s.classes[0]
		if first.Attributes != class.Attributes || first.Realizations != class.Realizations {
			return -1, &LoadError{
				Kind:           LoadSizeMismatch,
				Name:           class.Name,
				Width:          class.Attributes,
				Height:         class.Realizations,
				ExpectedWidth:  first.Attributes,
				ExpectedHeight: first.Realizations,
			}
		}
	}

	s.classes = append(s.classes, class)
	return len(s.classes) - 1, nil
}

// Remove deletes the class at index, shifting later classes down by one.
func (s *ClassSet) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.classes) {
		return fmt.Errorf("remove class %d of %d: %w", index, len(s.classes), ErrClassIndex)
	}

	classes := make([]*AttributeMatrix, 0, len(s.classes)-1)
	classes = append(classes, s.classes[:index]...)
	classes = append(classes, s.classes[index+1:]...)
	s.classes = classes
	return nil
}

// Get returns the class at index.
func (s *ClassSet) Get(index int) (*AttributeMatrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.classes) {
		return nil, fmt.Errorf("class %d of %d: %w", index, len(s.classes), ErrClassIndex)
	}
	return s.classes[index], nil
}

func (s *ClassSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.classes)
}

// All returns a snapshot of the loaded classes in index order.
func (s *ClassSet) All() []*AttributeMatrix {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*AttributeMatrix, len(s.classes))
	copy(out, s.classes)
	return out
}

// Shape returns the shared width and height, or zeros when the set is empty.
func (s *ClassSet) Shape() (attributes, realizations int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.classes) == 0 {
		return 0, 0
	}
	return s.classes[0].Attributes, s.classes[0].Realizations
}
