package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/automlhq/tabular/pkg/errors"
)

// SaveModel writes a fitted component to a file with gob encoding.
// The training job uses this to persist the fitted preprocessor alongside
// the exported model artifact.
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(model); err != nil {
		return errors.Wrapf(err, "encode model to %s", filename)
	}
	return nil
}

// LoadModel reads a fitted component from a file written by SaveModel.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "open %s", filename)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(model); err != nil {
		return errors.Wrapf(err, "decode model from %s", filename)
	}
	return nil
}

// SaveModelToWriter writes a fitted component to w with gob encoding.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "encode model")
	}
	return nil
}

// LoadModelFromReader reads a fitted component from r.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "decode model")
	}
	return nil
}
