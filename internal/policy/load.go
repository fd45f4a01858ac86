package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	yaml "gopkg.in/yaml.v3"
)

// Document formats accepted by the loader.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

var policyExtensions = []string{".yaml", ".yml", ".json", ".toml"}

// FormatFor infers the document format from a file suffix.
func FormatFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Resolve loads ref as a file when one exists at that path and falls back
// to a built-in template of that name.
func Resolve(ref string) (*Policy, error) {
	if _, err := os.Stat(ref); err == nil {
		return Load(ref)
	}
	if IsBuiltin(ref) {
		return Builtin(ref)
	}
	return nil, &LoadError{Path: ref, Err: ErrPolicyNotFound}
}

// Load reads and validates a policy file.
func Load(path string) (*Policy, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Err: ErrPolicyNotFound}
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return LoadBytes(b, format, path)
}

// LoadBytes decodes a policy document. source names the document in errors
// and supplies the fallback policy name (its file stem).
func LoadBytes(b []byte, format, source string) (*Policy, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(b, &raw)
	case FormatJSON:
		err = json.Unmarshal(b, &raw)
	case FormatTOML:
		err = toml.Unmarshal(b, &raw)
	default:
		return nil, &LoadError{Path: source, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)}
	}
	if err != nil {
		return nil, &LoadError{Path: source, Err: fmt.Errorf("%w: decode %s: %v", ErrInvalidPolicy, format, err)}
	}
	p, err := fromDocument(raw, source)
	if err != nil {
		return nil, &LoadError{Path: source, Err: err}
	}
	return p, nil
}

// fromDocument maps a decoded document onto the policy model. Besides the
// canonical layout it accepts: when.{detector,field,kind} for the field, a
// transforms map carrying action parameters, defaults.action for rules
// without one and metadata.{name,id,title} for the name. Rules missing a
// field or action are skipped.
func fromDocument(raw map[string]any, source string) (*Policy, error) {
	meta, _ := asMap(raw["metadata"])

	name := firstString(raw, "name")
	if name == "" {
		name = firstString(meta, "name", "id", "title")
	}
	if name == "" && source != "" {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	description := firstString(raw, "description")
	if description == "" {
		description = firstString(meta, "description")
	}

	version := 1
	if v, ok := raw["version"]; ok {
		n, ok := asInt(v)
		if !ok {
			return nil, invalid("version must be an integer, got %v", v)
		}
		version = n
	}

	defaults, _ := asMap(raw["defaults"])
	defaultAction := firstString(defaults, "action")

	items, ok := asList(raw["rules"])
	if !ok && raw["rules"] != nil {
		return nil, invalid("rules must be a list")
	}
	rules := make([]Rule, 0, len(items))
	for i, item := range items {
		m, ok := asMap(item)
		if !ok {
			return nil, invalid("rules[%d] must be a mapping", i)
		}
		r, keep, err := ruleFromMap(m, i, defaultAction)
		if err != nil {
			return nil, err
		}
		if keep {
			rules = append(rules, r)
		}
	}
	return New(version, name, description, rules...)
}

func ruleFromMap(m map[string]any, index int, defaultAction string) (Rule, bool, error) {
	field := firstString(m, "field")
	if field == "" {
		when, _ := asMap(m["when"])
		field = firstString(when, "detector", "field", "kind")
	}
	actionName := firstString(m, "action")
	if actionName == "" {
		actionName = defaultAction
	}
	if field == "" || actionName == "" {
		return Rule{}, false, nil
	}
	action, err := NormalizeAction(actionName)
	if err != nil {
		return Rule{}, false, fmt.Errorf("%w: rules[%d]: %w", ErrInvalidPolicy, index, err)
	}
	id := firstString(m, "id")
	if id == "" {
		id = "rule_" + strconv.Itoa(index+1)
	}
	r := NewRule(id, field, action)

	params := map[string]any{}
	for k, v := range m {
		params[k] = v
	}
	if tr, ok := asMap(m["transforms"]); ok {
		for k, v := range tr {
			params[k] = v
		}
	}
	if v, ok := firstPresent(params, "replacement"); ok {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return Rule{}, false, invalid("rule %s: replacement must be a non-blank string", id)
		}
		r.Replacement = s
	}
	if v, ok := firstPresent(params, "keep_head", "show_first", "keep_first"); ok {
		n, ok := asInt(v)
		if !ok {
			return Rule{}, false, invalid("rule %s: keep_head must be an integer", id)
		}
		r.KeepHead = n
	}
	if v, ok := firstPresent(params, "keep_tail", "show_last", "keep_last"); ok {
		n, ok := asInt(v)
		if !ok {
			return Rule{}, false, invalid("rule %s: keep_tail must be an integer", id)
		}
		r.KeepTail = n
	}
	if g := firstString(params, "mask_glyph", "glyph"); g != "" {
		r.MaskGlyph = g
	}
	if salt, ok := params["salt"].(string); ok {
		r.Salt = salt
	}

	if w, ok := m["where"]; ok && w != nil {
		wm, ok := asMap(w)
		if !ok {
			return Rule{}, false, invalidRule(id, fmt.Errorf("%w: where must be a mapping", ErrInvalidPredicate))
		}
		where, err := whereFromMap(wm)
		if err != nil {
			return Rule{}, false, invalidRule(id, err)
		}
		r.Where = &where
	}
	return r, true, nil
}

func whereFromMap(m map[string]any) (Where, error) {
	var w Where
	for key, v := range m {
		switch key {
		case "min_confidence", "max_confidence":
			f, ok := asFloat(v)
			if !ok {
				return w, fmt.Errorf("%w: %s must be a number", ErrInvalidPredicate, key)
			}
			if key == "min_confidence" {
				w.MinConfidence = Float(f)
			} else {
				w.MaxConfidence = Float(f)
			}
		case "value_matches", "normalized_matches":
			s, ok := v.(string)
			if !ok {
				return w, fmt.Errorf("%w: %s must be a string", ErrInvalidPredicate, key)
			}
			if key == "value_matches" {
				w.ValueMatches = s
			} else {
				w.NormalizedMatches = s
			}
		case "metadata":
			md, ok := asMap(v)
			if !ok {
				return w, fmt.Errorf("%w: metadata must be a mapping", ErrInvalidPredicate)
			}
			w.Metadata = make(map[string]MetadataPredicate, len(md))
			for mk, mv := range md {
				p, err := metadataPredicate(mk, mv)
				if err != nil {
					return w, err
				}
				w.Metadata[mk] = p
			}
		default:
			return w, fmt.Errorf("%w: unknown key %q", ErrInvalidPredicate, key)
		}
	}
	return w, nil
}

// metadataPredicate reads {equals, matches}; any other value is a literal
// to compare for equality.
func metadataPredicate(key string, v any) (MetadataPredicate, error) {
	m, ok := asMap(v)
	if !ok {
		return MetadataPredicate{Equals: v}, nil
	}
	var p MetadataPredicate
	for k, sub := range m {
		switch k {
		case "equals":
			p.Equals = sub
		case "matches":
			s, ok := sub.(string)
			if !ok {
				return p, fmt.Errorf("%w: metadata.%s.matches must be a string", ErrInvalidPredicate, key)
			}
			p.Matches = s
		default:
			return p, fmt.Errorf("%w: metadata.%s: unknown key %q", ErrInvalidPredicate, key, k)
		}
	}
	return p, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

func asInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func asFloat(v any) (float64, bool) { return toFloat(v) }

func firstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
