package pregel

import (
	"fmt"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
)

// Visibility controls whether a node value is part of the run result
type Visibility int

const (
	// Public values are returned to callers and exported
	Public Visibility = iota
	// Private values are working state of the computation
	Private
)

// Element describes one node value slot
type Element struct {
	Key        string
	Type       graph.ValueType
	Visibility Visibility
}

// Schema is the ordered set of node value slots of a computation
type Schema struct {
	elements []Element
	index    map[string]int
	err      error
}

// NewSchema creates an empty schema
func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// Add appends a slot. Visibility defaults to Public. Adding a key twice
// is recorded and reported by Err.
func (s *Schema) Add(key string, valueType graph.ValueType, visibility ...Visibility) *Schema {
	vis := Public
	if len(visibility) > 0 {
		vis = visibility[0]
	}
	if _, exists := s.index[key]; exists {
		if s.err == nil {
			s.err = fmt.Errorf("duplicate schema key %q", key)
		}
		return s
	}
	s.index[key] = len(s.elements)
	s.elements = append(s.elements, Element{Key: key, Type: valueType, Visibility: vis})
	return s
}

// Elements returns the slots in declaration order
func (s *Schema) Elements() []Element {
	return s.elements
}

// Element returns the slot for key
func (s *Schema) Element(key string) (Element, bool) {
	i, ok := s.index[key]
	if !ok {
		return Element{}, false
	}
	return s.elements[i], true
}

// Err returns the first construction error, if any
func (s *Schema) Err() error {
	if s.err != nil {
		return s.err
	}
	if len(s.elements) == 0 {
		return fmt.Errorf("schema has no elements")
	}
	return nil
}

// BytesPerNode is the estimated value footprint of one node
func (s *Schema) BytesPerNode() int64 {
	var n int64
	for _, e := range s.elements {
		n += e.Type.SizeOf()
	}
	return n
}
