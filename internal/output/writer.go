package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	schemaURL = "extraction_result.schema.json"

	// DefaultFilePerm is the permission used for result files
	DefaultFilePerm = 0o644
)

//go:embed schema.json
var resultSchema []byte

// Writer serializes extraction results to pretty-printed JSON files
type Writer struct {
	schema *jsonschema.Schema
}

// NewWriter creates a writer. When validate is true every encoded result is
// checked against the embedded result schema before it reaches disk.
func NewWriter(validate bool) (*Writer, error) {
	w := &Writer{}
	if !validate {
		return w, nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(resultSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	w.schema = schema
	return w, nil
}

// Validates reports whether the writer checks results against the schema
func (w *Writer) Validates() bool {
	return w.schema != nil
}

// Encode renders v as UTF-8 JSON with 2-space indentation. Non-ASCII and
// HTML-significant characters are emitted literally.
func (w *Writer) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	if w.schema != nil {
		if err := w.validate(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (w *Writer) validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if err := w.schema.Validate(doc); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}

// Write encodes v and overwrites the file at path in place. The write is not
// atomic; a concurrent reader may observe a truncated file.
func (w *Writer) Write(path string, v any) error {
	data, err := w.Encode(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, DefaultFilePerm); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
