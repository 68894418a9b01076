package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"droneops-dispatch/internal/fleet"
)

// File stores the document on disk. Paths ending in .msgpack are encoded
// with MessagePack, everything else as indented JSON. Writes go to a
// temporary file that is renamed over the target.
type File struct {
	Path string
}

// NewFile returns a file backend for path.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) msgpack() bool {
	return strings.EqualFold(filepath.Ext(f.Path), ".msgpack")
}

func (f *File) Load(_ context.Context) (*fleet.State, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return fleet.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", f.Path, err)
	}
	s := fleet.NewState()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if f.msgpack() {
		err = msgpack.Unmarshal(data, s)
	} else {
		err = json.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("decode state %s: %w", f.Path, err)
	}
	return s, nil
}

func (f *File) Save(_ context.Context, s *fleet.State) error {
	var (
		data []byte
		err  error
	)
	if f.msgpack() {
		data, err = msgpack.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}
