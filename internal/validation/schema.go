package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// InputSchemaJSON is the JSON Schema describing chart input documents.
//
//go:embed schemas/input.schema.json
var InputSchemaJSON string

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var (
	schemaOnce  sync.Once
	inputSchema *jsonschema.Schema
	schemaErr   error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		inputSchema, schemaErr = compileSchema(InputSchemaJSON, "input.schema.json")
	})
	return inputSchema, schemaErr
}

func compileSchema(raw string, name string) (*jsonschema.Schema, error) {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		return nil, fmt.Errorf("parsing embedded %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		return nil, fmt.Errorf("adding %s resource: %w", name, err)
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return sch, nil
}

// AuditBytes checks a chart document against the JSON Schema and returns
// every structural violation, unlike Parse which stops at the first one.
// Cross-field rules (positive <= total, unique provider keys) are not
// expressible in the schema and are left to Parse.
func AuditBytes(data []byte) []string {
	schema, err := compiledSchema()
	if err != nil {
		return []string{fmt.Sprintf("schema: %v", err)}
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}

	return validateAgainstSchema(schema, convertToJSONCompatible(doc))
}

// AuditFile is AuditBytes for a document on disk. Icon file references are
// resolved relative to the document first, as LoadFile does.
func AuditFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schema, err := compiledSchema()
	if err != nil {
		return []string{fmt.Sprintf("schema: %v", err)}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}, nil
	}
	if root := documentRoot(&node); root != nil && root.Kind == yaml.MappingNode {
		if err := resolveIconFiles(root, filepath.Dir(path)); err != nil {
			return []string{err.Error()}, nil
		}
	}

	var doc any
	if err := node.Decode(&doc); err != nil {
		return []string{fmt.Sprintf("YAML decode error: %v", err)}, nil
	}
	return validateAgainstSchema(schema, convertToJSONCompatible(doc)), nil
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible rewrites YAML-decoded values into the shapes a JSON
// decoder would produce. yaml.v3 already yields map[string]any; map keys that
// are not strings (e.g. `1: x`) are stringified.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[fmt.Sprint(k)] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
