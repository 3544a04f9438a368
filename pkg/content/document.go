package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions are tried in this order when looking up a data file by base name.
var Extensions = []string{".json", ".yaml", ".yml"}

// FindFile returns the first existing dir/base{.json,.yaml,.yml}, or "" if
// none exists.
func FindFile(dir, base string) string {
	for _, ext := range Extensions {
		p := filepath.Join(dir, base+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ReadJSON reads a JSON or YAML data file and returns its JSON encoding.
// YAML is converted so that every consumer decodes one format.
func ReadJSON(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		var buf bytes.Buffer
		if err := writeNode(&buf, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return buf.Bytes(), nil
	default:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%s: invalid JSON", filepath.Base(path))
		}
		return raw, nil
	}
}

// writeNode encodes a YAML node as JSON. Mapping keys keep their file order,
// which dialogue topics depend on.
func writeNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNode(buf, n.Content[0])
	case yaml.AliasNode:
		return writeNode(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNode(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		out, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(out)
	}
	return nil
}

// Generic decodes JSON into the any form expected by Validate.
func Generic(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
