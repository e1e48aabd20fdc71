package transfer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"gopkg.in/yaml.v3"

	"github.com/Maxsatbek/my-home/internal/kb"
)

//go:embed schema.cue
var schemaCUE string

// Format is a serialization format for import and export.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q: want json or yaml", s)
	}
}

// FormatForPath picks the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ExportFileName returns the conventional export file name for a day.
func ExportFileName(day kb.Date, f Format) string {
	return fmt.Sprintf("pkb2-export-%s.%s", day, f)
}

// MarshalJSON encodes db as two-space indented JSON with a trailing newline.
// HTML characters are not escaped.
func MarshalJSON(db *kb.Database) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(db); err != nil {
		return nil, fmt.Errorf("marshal database: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalYAML encodes db as block-style YAML with the same field names and
// order as the JSON form.
func MarshalYAML(db *kb.Database) ([]byte, error) {
	data, err := MarshalJSON(db)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("marshal database: %w", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("marshal database: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal database: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle drops the flow and quoting styles JSON input carries so the
// encoder picks plain block YAML, quoting only where needed.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Export writes db to w in format f.
func Export(w io.Writer, db *kb.Database, f Format) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatYAML:
		data, err = MarshalYAML(db)
	default:
		data, err = MarshalJSON(db)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import reads a replacement Database from r in format f.
func Import(r io.Reader, f Format) (*kb.Database, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, kb.WrapError(kb.ErrCodeMalformedImport, "import", "read input", err)
	}
	if f == FormatYAML {
		return DecodeYAML(data)
	}
	return DecodeJSON(data)
}

// DecodeYAML converts a YAML document to JSON and decodes it with DecodeJSON.
func DecodeYAML(data []byte) (*kb.Database, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, kb.WrapError(kb.ErrCodeMalformedImport, "import", "invalid YAML", err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, kb.WrapError(kb.ErrCodeMalformedImport, "import", "YAML document is not representable as JSON", err)
	}
	return DecodeJSON(asJSON)
}

// DecodeJSON checks the structural contract, decodes data into a fresh
// Database and validates it. Settings missing from the document take their
// defaults.
func DecodeJSON(data []byte) (*kb.Database, error) {
	const op = "import"
	if err := CheckShape(data); err != nil {
		return nil, err
	}

	db := &kb.Database{Settings: kb.DefaultSettings()}
	if err := json.Unmarshal(data, db); err != nil {
		return nil, kb.WrapError(kb.ErrCodeMalformedImport, op, "decode database", err)
	}
	if err := db.Validate(); err != nil {
		return nil, kb.WrapError(kb.ErrCodeMalformedImport, op, "invalid database", err)
	}
	return db, nil
}

// CheckShape reports whether a JSON document meets the import contract: an
// object with a "sections" list whose entries are objects.
func CheckShape(data []byte) error {
	const op = "import"
	ctx := cuecontext.New()

	expr, err := cuejson.Extract("import.json", data)
	if err != nil {
		return kb.WrapError(kb.ErrCodeMalformedImport, op, "invalid JSON", err)
	}
	v := ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return kb.WrapError(kb.ErrCodeMalformedImport, op, "invalid JSON", err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return kb.NewError(kb.ErrCodeMalformedImport, op, "document is not an object")
	}
	if !v.LookupPath(cue.ParsePath("sections")).Exists() {
		return kb.NewError(kb.ErrCodeMalformedImport, op, `missing "sections" field`)
	}

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile import schema: %w", err)
	}
	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return kb.WrapError(kb.ErrCodeMalformedImport, op, `"sections" must be a list of objects`, err)
	}
	return nil
}
