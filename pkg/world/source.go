package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/mud-engine/pkg/content"
)

var ErrWorldNotFound = errors.New("world not found")

// Source provides the initial rooms of a world. Load returns
// ErrWorldNotFound when no such world exists.
type Source interface {
	Load(name string) ([]*Room, error)
}

// FileSource reads worlds/<name>.{json,yaml,yml} shaped {"rooms":[...]}.
type FileSource struct {
	Dir string
}

func NewFileSource(dataDir string) *FileSource {
	return &FileSource{Dir: filepath.Join(dataDir, "worlds")}
}

func (fs *FileSource) Load(name string) ([]*Room, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("invalid world name %q", name)
	}
	path := content.FindFile(fs.Dir, name)
	if path == "" {
		return nil, ErrWorldNotFound
	}
	return ReadFile(path)
}

// ReadFile decodes and schema-validates one world file.
func ReadFile(path string) ([]*Room, error) {
	data, err := content.ReadJSON(path)
	if err != nil {
		return nil, err
	}
	generic, err := content.Generic(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := content.Validate(content.SchemaWorld, generic); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	var doc struct {
		Rooms []*Room `json:"rooms"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc.Rooms, nil
}

// StaticSource serves worlds from memory. Each Load hands out fresh copies.
type StaticSource map[string][]*Room

func (s StaticSource) Load(name string) ([]*Room, error) {
	rooms, ok := s[name]
	if !ok {
		return nil, ErrWorldNotFound
	}
	out := make([]*Room, len(rooms))
	for i, r := range rooms {
		out[i] = r.clone()
	}
	return out, nil
}
