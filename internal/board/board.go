package board

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layer groups elements for the layer replay mode. Ordering follows Index.
type Layer struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Index int    `yaml:"index"`
}

// Board is a serializable snapshot of a drawing board: the element list the
// replay engine consumes, plus layer metadata.
type Board struct {
	Version  string    `yaml:"version"`
	Name     string    `yaml:"name,omitempty"`
	Layers   []Layer   `yaml:"layers,omitempty"`
	Elements []Element `yaml:"elements"`
}

// ReadBoard reads a board snapshot from a YAML file.
func ReadBoard(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("board parse error: %w", err)
	}
	return &b, nil
}

// WriteBoard writes a board snapshot to a YAML file.
func WriteBoard(b *Board, path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
