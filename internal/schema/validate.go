// Package schema implements the JSON-Schema subset the core validator
// needs: type, required, properties, additionalProperties, enum. The
// interface is a pure function so the core never depends on this package's
// internals directly — a different validator can be swapped in behind the
// same signature.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/systemshift/leaky/internal/leakyerr"
)

// Type enumerates the JSON-Schema primitive types this subset recognizes.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeNull    Type = "null"
)

// Property describes one entry in a schema's "properties" map.
type Property struct {
	Type     Type          `json:"type,omitempty"`
	Enum     []interface{} `json:"enum,omitempty"`
	Required bool          `json:"-"`
}

// Doc is the parsed shape of a schema document: the narrow subset spec.md
// scopes the validator down to. AdditionalProperties defaults to true
// (unset) when absent, matching JSON-Schema's own default.
type Doc struct {
	Type                 Type                `json:"type,omitempty"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
	Enum                 []interface{}       `json:"enum,omitempty"`
}

// Parse decodes a schema document's raw JSON.
func Parse(raw []byte) (*Doc, error) {
	var d Doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("schema: parse: %w", err)
	}
	return &d, nil
}

// Validate checks value (already-decoded JSON/CBOR data: map[string]any,
// []any, string, float64, bool, nil) against the schema's raw bytes, and
// returns every violation found (empty slice means valid). It never panics
// on malformed schema JSON; a parse failure surfaces as a single violation.
func Validate(schemaJSON []byte, value interface{}) []leakyerr.Violation {
	doc, err := Parse(schemaJSON)
	if err != nil {
		return []leakyerr.Violation{{Path: "", Reason: err.Error()}}
	}
	var violations []leakyerr.Violation
	validateDoc(doc, value, "", &violations)
	return violations
}

func validateDoc(doc *Doc, value interface{}, path string, out *[]leakyerr.Violation) {
	if doc.Type != "" && !typeMatches(doc.Type, value) {
		*out = append(*out, leakyerr.Violation{
			Path:   path,
			Reason: fmt.Sprintf("expected type %s, got %s", doc.Type, describe(value)),
		})
		return
	}

	if len(doc.Enum) > 0 && !enumContains(doc.Enum, value) {
		*out = append(*out, leakyerr.Violation{
			Path:   path,
			Reason: fmt.Sprintf("value not in enum %v", doc.Enum),
		})
	}

	obj, isObject := value.(map[string]interface{})
	if !isObject {
		return
	}

	for _, name := range doc.Required {
		if _, ok := obj[name]; !ok {
			*out = append(*out, leakyerr.Violation{
				Path:   joinPath(path, name),
				Reason: "missing required property",
			})
		}
	}

	if doc.AdditionalProperties != nil && !*doc.AdditionalProperties {
		extra := unexpectedKeys(doc.Properties, obj)
		for _, name := range extra {
			*out = append(*out, leakyerr.Violation{
				Path:   joinPath(path, name),
				Reason: "unexpected additional property",
			})
		}
	}

	for name, prop := range doc.Properties {
		v, present := obj[name]
		if !present {
			continue
		}
		sub := &Doc{Type: prop.Type, Enum: prop.Enum}
		validateDoc(sub, v, joinPath(path, name), out)
	}
}

func typeMatches(t Type, value interface{}) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeNumber:
		return isNumber(value)
	case TypeInteger:
		f, ok := numberValue(value)
		return ok && f == float64(int64(f))
	case TypeObject:
		_, ok := value.(map[string]interface{})
		return ok
	case TypeArray:
		_, ok := value.([]interface{})
		return ok
	case TypeNull:
		return value == nil
	default:
		return true
	}
}

func isNumber(value interface{}) bool {
	_, ok := numberValue(value)
	return ok
}

func numberValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func enumContains(enum []interface{}, value interface{}) bool {
	for _, candidate := range enum {
		if fmt.Sprint(candidate) == fmt.Sprint(value) {
			return true
		}
	}
	return false
}

func unexpectedKeys(allowed map[string]Property, obj map[string]interface{}) []string {
	var extra []string
	for k := range obj {
		if _, ok := allowed[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

func describe(value interface{}) string {
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
