package llm

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Violation is one schema failure inside a reply. Row is -1 when the failure concerns the
// document as a whole.
type Violation struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	switch {
	case v.Row < 0:
		return v.Message
	case v.Field == "":
		return fmt.Sprintf("row %d: %s", v.Row, v.Message)
	default:
		return fmt.Sprintf("row %d %s: %s", v.Row, v.Field, v.Message)
	}
}

// SchemaError lists every violation found in one document, ordered by row then field.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	const shown = 5
	parts := make([]string, 0, shown)
	for i, v := range e.Violations {
		if i == shown {
			parts = append(parts, fmt.Sprintf("and %d more", len(e.Violations)-shown))
			break
		}
		parts = append(parts, v.String())
	}
	return "json does not match schema: " + strings.Join(parts, "; ")
}

var recordsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return CompileSchema("records.json", RecordsJSONSchema())
})

// CompileSchema compiles an in-memory schema document registered under name.
func CompileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return c.Compile(name)
}

// ValidateRecords checks a decoded reply against the records schema. A mismatch is
// returned as *SchemaError.
func ValidateRecords(doc any) error {
	schema, err := recordsSchema()
	if err != nil {
		return fmt.Errorf("records schema: %w", err)
	}
	return validate(schema, doc)
}

// ValidateRecordsJSON decodes data and checks it against the records schema.
func ValidateRecordsJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return ValidateRecords(doc)
}

func validate(schema *jsonschema.Schema, doc any) error {
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	out := leaves(ve, nil)
	slices.SortStableFunc(out, func(a, b Violation) int {
		return cmp.Or(cmp.Compare(a.Row, b.Row), cmp.Compare(a.Field, b.Field))
	})
	return &SchemaError{Violations: out}
}

// leaves flattens the cause tree; only the innermost errors name a concrete problem.
func leaves(ve *jsonschema.ValidationError, out []Violation) []Violation {
	if len(ve.Causes) == 0 {
		row, field := locate(ve.InstanceLocation)
		return append(out, Violation{Row: row, Field: field, Message: ve.Message})
	}
	for _, c := range ve.Causes {
		out = leaves(c, out)
	}
	return out
}

// locate splits a JSON pointer such as "/3/valor" into row 3 and field "valor".
func locate(ptr string) (int, string) {
	parts := strings.SplitN(strings.TrimPrefix(ptr, "/"), "/", 3)
	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return -1, ""
	}
	if len(parts) < 2 {
		return row, ""
	}
	field := strings.NewReplacer("~1", "/", "~0", "~").Replace(parts[1])
	return row, field
}
