// Package ctxparse flattens structured documents into field paths so
// field-name hints can run over them.
package ctxparse

import (
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	yaml "gopkg.in/yaml.v3"
)

// Field is one scalar leaf of a document.
type Field struct {
	Key   string // dotted path, sequence items as name[i]
	Name  string // last mapping key on the path
	Value string
	Line  int // 1-based
}

// JSONFields flattens a JSON document. JSON is parsed through yaml.v3, which
// accepts it as a YAML subset and keeps line numbers. Invalid JSON yields nil.
func JSONFields(b []byte) []Field {
	if !json.Valid(b) {
		return nil
	}
	return YAMLFields(b)
}

// YAMLFields flattens every scalar leaf reachable through mappings and
// sequences. Unparseable input yields nil.
func YAMLFields(b []byte) []Field {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil
	}
	var out []Field
	var walk func(n *yaml.Node, path string, name string)
	walk = func(n *yaml.Node, path, name string) {
		switch n.Kind {
		case yaml.DocumentNode:
			for _, c := range n.Content {
				walk(c, path, name)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				key := n.Content[i].Value
				next := key
				if path != "" {
					next = path + "." + key
				}
				walk(n.Content[i+1], next, key)
			}
		case yaml.SequenceNode:
			for i, c := range n.Content {
				walk(c, fmt.Sprintf("%s[%d]", path, i), name)
			}
		case yaml.AliasNode:
			if n.Alias != nil {
				walk(n.Alias, path, name)
			}
		case yaml.ScalarNode:
			if path != "" {
				out = append(out, Field{Key: path, Name: name, Value: n.Value, Line: n.Line})
			}
		}
	}
	walk(&root, "", "")
	return out
}

// FieldsFor picks the flattener from the file suffix. Unknown suffixes try
// JSON first, then YAML.
func FieldsFor(path string, b []byte) []Field {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONFields(b)
	case ".yaml", ".yml":
		return YAMLFields(b)
	}
	if f := JSONFields(b); f != nil {
		return f
	}
	return YAMLFields(b)
}
