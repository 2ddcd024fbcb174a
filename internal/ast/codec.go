package ast

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// UnitSchema is bumped whenever the on-disk layout of Unit changes.
const UnitSchema uint16 = 1

// Unit is the interchange form handed from the front end to the code
// generator: one program plus the source it was parsed from (optional, used
// for diagnostics).
type Unit struct {
	Schema  uint16   `msgpack:"schema"`
	Name    string   `msgpack:"name"`
	Path    string   `msgpack:"path,omitempty"`
	Source  []byte   `msgpack:"src,omitempty"`
	Program *Program `msgpack:"program"`
}

var ErrSchemaMismatch = errors.New("unit schema mismatch")

// Encode writes u as msgpack.
func Encode(w io.Writer, u *Unit) error {
	if u == nil || u.Program == nil {
		return fmt.Errorf("encode unit: empty program")
	}
	u.Schema = UnitSchema
	enc := msgpack.NewEncoder(w)
	enc.SetOmitEmpty(true)
	return enc.Encode(u)
}

// Decode reads a msgpack unit and validates its schema.
func Decode(r io.Reader) (*Unit, error) {
	var u Unit
	if err := msgpack.NewDecoder(r).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode unit: %w", err)
	}
	if u.Schema != UnitSchema {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, u.Schema, UnitSchema)
	}
	if u.Program == nil {
		return nil, fmt.Errorf("decode unit %q: missing program", u.Name)
	}
	return &u, nil
}

// Marshal is Encode into a byte slice.
func Marshal(u *Unit) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, u); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadUnitFile loads a .zast file.
func ReadUnitFile(path string) (*Unit, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	u, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if u.Path == "" {
		u.Path = path
	}
	return u, nil
}

// WriteUnitFile stores u at path.
func WriteUnitFile(path string, u *Unit) error {
	data, err := Marshal(u)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
