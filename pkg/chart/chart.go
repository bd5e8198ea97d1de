// Package chart is the serialization boundary: it reads and writes the
// dataset form ([hierarchy.Raw]) and the computed layout document consumed
// by renderers and external tools.
package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

// MarshalDataset converts a dataset to pretty-printed JSON bytes.
func MarshalDataset(raw *hierarchy.Raw) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDatasetTo(raw, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDatasetFile writes a dataset to a JSON file.
// The file is created with 0644 permissions.
func WriteDatasetFile(raw *hierarchy.Raw, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDatasetTo(raw, f)
}

// WriteDataset writes a dataset as JSON to an io.Writer.
func WriteDataset(raw *hierarchy.Raw, w io.Writer) error {
	return writeDatasetTo(raw, w)
}

// ReadDatasetFile reads a JSON dataset file. The dataset is decoded only;
// validation happens in [hierarchy.Build].
func ReadDatasetFile(path string) (*hierarchy.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readDatasetFrom(f)
}

// ReadDataset decodes a JSON dataset from an io.Reader.
func ReadDataset(r io.Reader) (*hierarchy.Raw, error) {
	return readDatasetFrom(r)
}

func writeDatasetTo(raw *hierarchy.Raw, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readDatasetFrom(r io.Reader) (*hierarchy.Raw, error) {
	var raw hierarchy.Raw
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &raw, nil
}
