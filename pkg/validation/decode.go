package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

var timeType = reflect.TypeOf(time.Time{})

// SchemaProvider lets a type declare its own JSON schema instead of the one
// derived from its Go kind.
type SchemaProvider interface {
	JSONSchema() map[string]any
}

var schemaProviderType = reflect.TypeOf((*SchemaProvider)(nil)).Elem()

// node mirrors the derived schema so issues can be labelled and ordered by
// declaration.
type node struct {
	typ    reflect.Type
	fields []field
	byName map[string]int
	items  *node
}

type field struct {
	index      int
	name       string
	required   bool
	def        string
	hasDefault bool
	node       *node
}

type compiled struct {
	schema *jsonschema.Schema
	root   *node
}

var schemaCache sync.Map // reflect.Type -> *compiled

// Decode parses data into a new T, applying defaults and reporting every missing,
// wrongly typed or undeclared field. Validator constraints are checked once the
// payload matches the schema. T must be a struct type.
func Decode[T any](data []byte) (*T, error) {
	var out T
	rt := reflect.TypeOf(&out).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("validation: Decode target %s is not a struct", rt)
	}
	c, err := schemaFor(rt)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, &ValidationError{Issues: []FieldIssue{{
			Loc:  []string{"body"},
			Msg:  "request body is not valid JSON",
			Type: IssueJSON,
		}}}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(trimmed))
	if err != nil {
		return nil, &ValidationError{Issues: []FieldIssue{{Loc: []string{"body"}, Msg: "request body is not valid JSON", Type: IssueJSON}}}
	}
	obj, ok := inst.(map[string]any)
	if !ok {
		return nil, &ValidationError{Issues: []FieldIssue{{
			Loc:  []string{"body"},
			Msg:  "value is not a valid object",
			Type: "type_error.object",
		}}}
	}

	if err := c.schema.Validate(obj); err != nil {
		var schemaErr *jsonschema.ValidationError
		if !errors.As(err, &schemaErr) {
			return nil, fmt.Errorf("validation: %w", err)
		}
		return nil, &ValidationError{Issues: schemaIssues(schemaErr, c.root)}
	}

	applyDefaults(obj, c.root)
	var issues []FieldIssue
	populate(reflect.ValueOf(&out).Elem(), obj, c.root, []string{"body"}, &issues)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	if issues := constraintIssues(&out); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return &out, nil
}

func schemaFor(t reflect.Type) (*compiled, error) {
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*compiled), nil
	}
	doc, root := derive(t)
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema for %s: %w", t, err)
	}
	loaded, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation: load schema for %s: %w", t, err)
	}

	location := "https://schemas.regscope.local/" + url.PathEscape(t.PkgPath()+"."+t.Name()) + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	compiler.AssertFormat()
	compiler.RegisterFormat(&jsonschema.Format{Name: FormatDateTime, Validate: validateDateTimeFormat})
	if err := compiler.AddResource(location, loaded); err != nil {
		return nil, fmt.Errorf("validation: add schema for %s: %w", t, err)
	}
	sch, err := compiler.Compile(location)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema for %s: %w", t, err)
	}

	c := &compiled{schema: sch, root: root}
	actual, _ := schemaCache.LoadOrStore(t, c)
	return actual.(*compiled), nil
}

// derive builds the JSON schema of t and its node tree.
func derive(t reflect.Type) (map[string]any, *node) {
	n := &node{typ: t}
	if provider, ok := providedSchema(t); ok {
		return provider, n
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
		n.typ = t
	}
	if t == timeType {
		return map[string]any{"type": "string", "format": "date-time"}, n
	}

	switch t.Kind() {
	case reflect.Struct:
		return deriveObject(t, n), n
	case reflect.String:
		return map[string]any{"type": "string"}, n
	case reflect.Bool:
		return map[string]any{"type": "boolean"}, n
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}, n
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}, n
	case reflect.Slice, reflect.Array:
		items, itemNode := derive(t.Elem())
		n.items = itemNode
		return map[string]any{"type": "array", "items": items}, n
	case reflect.Map:
		return map[string]any{"type": "object"}, n
	default:
		return map[string]any{}, n
	}
}

func deriveObject(t reflect.Type, n *node) map[string]any {
	properties := map[string]any{}
	required := []string{}
	n.byName = map[string]int{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonName(f)
		if name == "" {
			continue
		}
		def, hasDefault := f.Tag.Lookup("default")
		isRequired := f.Tag.Get("schema") == "required"

		prop, child := derive(f.Type)
		if !isRequired {
			prop = nullable(prop)
		} else {
			required = append(required, name)
		}
		properties[name] = prop
		n.byName[name] = len(n.fields)
		n.fields = append(n.fields, field{
			index:      i,
			name:       name,
			required:   isRequired,
			def:        def,
			hasDefault: hasDefault,
			node:       child,
		})
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func providedSchema(t reflect.Type) (map[string]any, bool) {
	for _, candidate := range []reflect.Type{t, reflect.PointerTo(t)} {
		if candidate.Implements(schemaProviderType) {
			v := reflect.New(candidate).Elem()
			if candidate.Kind() == reflect.Pointer {
				v = reflect.New(candidate.Elem())
			}
			return v.Interface().(SchemaProvider).JSONSchema(), true
		}
	}
	return nil, false
}

// nullable lets an optional field carry an explicit null.
func nullable(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	switch typ := schema["type"].(type) {
	case string:
		out["type"] = []any{typ, "null"}
	case []any:
		out["type"] = append(append([]any{}, typ...), "null")
	case []string:
		types := make([]any, 0, len(typ)+1)
		for _, s := range typ {
			types = append(types, s)
		}
		out["type"] = append(types, "null")
	}
	return out
}

// applyDefaults fills absent or null keys that declare a default.
func applyDefaults(obj map[string]any, n *node) {
	if n == nil {
		return
	}
	for _, f := range n.fields {
		value, present := obj[f.name]
		if (!present || value == nil) && f.hasDefault {
			obj[f.name] = defaultValue(f)
			continue
		}
		switch v := value.(type) {
		case map[string]any:
			applyDefaults(v, f.node)
		case []any:
			if f.node != nil && f.node.items != nil {
				for _, item := range v {
					if m, ok := item.(map[string]any); ok {
						applyDefaults(m, f.node.items)
					}
				}
			}
		}
	}
}

func defaultValue(f field) any {
	kind := reflect.String
	if f.node != nil && f.node.typ != nil {
		kind = f.node.typ.Kind()
	}
	switch kind {
	case reflect.Bool:
		b, err := strconv.ParseBool(f.def)
		if err != nil {
			panic(fmt.Sprintf("validation: bad default for %s: %v", f.name, err))
		}
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if _, err := strconv.ParseFloat(f.def, 64); err != nil {
			panic(fmt.Sprintf("validation: bad default for %s: %v", f.name, err))
		}
		return json.Number(f.def)
	default:
		return f.def
	}
}

// schemaIssues flattens the validator's error tree into field issues ordered by
// field declaration, undeclared keys last.
func schemaIssues(err *jsonschema.ValidationError, root *node) []FieldIssue {
	var issues []FieldIssue
	seen := map[string]struct{}{}
	add := func(issue FieldIssue) {
		key := strings.Join(issue.Loc, ".") + "|" + issue.Type
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		issues = append(issues, issue)
	}

	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		loc := append([]string{"body"}, e.InstanceLocation...)
		switch k := e.ErrorKind.(type) {
		case *kind.Required:
			for _, name := range k.Missing {
				add(FieldIssue{Loc: childLoc(loc, name), Msg: "field required", Type: IssueMissing})
			}
		case *kind.AdditionalProperties:
			for _, name := range k.Properties {
				add(FieldIssue{Loc: childLoc(loc, name), Msg: "extra fields not permitted", Type: IssueExtra})
			}
		case *kind.Type:
			if k.Got == "null" {
				add(FieldIssue{Loc: loc, Msg: "field required", Type: IssueMissing})
				return
			}
			add(typeIssue(loc, lookup(root, e.InstanceLocation)))
		case *kind.Format:
			add(typeIssue(loc, lookup(root, e.InstanceLocation)))
		default:
			add(FieldIssue{Loc: loc, Msg: "value is invalid", Type: IssueConstraint})
		}
	}
	walk(err)

	sort.SliceStable(issues, func(i, j int) bool {
		return locBefore(root, issues[i].Loc[1:], issues[j].Loc[1:])
	})
	return issues
}

func typeIssue(loc []string, n *node) FieldIssue {
	var t reflect.Type
	if n != nil {
		t = n.typ
	}
	return FieldIssue{Loc: loc, Msg: typeMessage(t), Type: "type_error." + typeName(t)}
}

// lookup resolves an instance location to its schema node.
func lookup(root *node, path []string) *node {
	n := root
	for _, part := range path {
		if n == nil {
			return nil
		}
		if n.items != nil {
			if _, err := strconv.Atoi(part); err == nil {
				n = n.items
				continue
			}
		}
		idx, ok := n.byName[part]
		if !ok {
			return nil
		}
		n = n.fields[idx].node
	}
	return n
}

// locBefore orders two instance paths by declaration order at every level.
func locBefore(root *node, a, b []string) bool {
	n := root
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			ra, rb := rank(n, a[i]), rank(n, b[i])
			if ra != rb {
				return ra < rb
			}
			return a[i] < b[i]
		}
		n = lookup(n, a[i:i+1])
	}
	return len(a) < len(b)
}

func rank(n *node, part string) int {
	if n == nil {
		return 0
	}
	if idx, ok := n.byName[part]; ok {
		return idx
	}
	if i, err := strconv.Atoi(part); err == nil && n.items != nil {
		return i
	}
	return len(n.fields)
}

// populate copies the validated payload into rv field by field. Nested structs
// are walked so wire names come from the schema, not from encoding/json matching.
func populate(rv reflect.Value, obj map[string]any, n *node, loc []string, issues *[]FieldIssue) {
	for _, f := range n.fields {
		value, ok := obj[f.name]
		if !ok || value == nil {
			continue
		}
		fv := rv.Field(f.index)
		fieldLoc := childLoc(loc, f.name)

		if nested, isObject := value.(map[string]any); isObject && f.node != nil && f.node.byName != nil {
			switch fv.Kind() {
			case reflect.Struct:
				populate(fv, nested, f.node, fieldLoc, issues)
				continue
			case reflect.Pointer:
				elem := reflect.New(fv.Type().Elem())
				populate(elem.Elem(), nested, f.node, fieldLoc, issues)
				fv.Set(elem)
				continue
			}
		}

		raw, err := json.Marshal(value)
		if err == nil {
			target := reflect.New(fv.Type())
			if err = json.Unmarshal(raw, target.Interface()); err == nil {
				fv.Set(target.Elem())
				continue
			}
		}
		// the schema admitted a value the Go type cannot hold, such as 1.5 for an int
		*issues = append(*issues, typeIssue(fieldLoc, f.node))
	}
}

func childLoc(parent []string, name string) []string {
	loc := make([]string, len(parent), len(parent)+1)
	copy(loc, parent)
	return append(loc, name)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	if schema, ok := providedSchema(t); ok && schema["format"] == FormatDateTime {
		return "datetime"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return "datetime"
	}
	switch t.Kind() {
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return strings.ToLower(t.Kind().String())
	}
}

func typeMessage(t reflect.Type) string {
	switch typeName(t) {
	case "str":
		return "value is not a valid string"
	case "bool":
		return "value could not be parsed to a boolean"
	case "integer":
		return "value is not a valid integer"
	case "float":
		return "value is not a valid number"
	case "datetime":
		return "invalid datetime format"
	case "object":
		return "value is not a valid object"
	case "list":
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		return fmt.Sprintf("value is not a valid list of %s", typeName(t.Elem()))
	default:
		return "value has an invalid type"
	}
}
