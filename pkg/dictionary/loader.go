package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const rulesSchemaURL = "https://formplugin.schemas.local/rules.schema.json"

const rulesSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "enums": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "additionalProperties": false,
          "required": ["label"],
          "properties": {
            "label": {"type": "string", "minLength": 1},
            "translation": {"type": "string"},
            "outs": {"type": "array", "items": {"type": "string"}},
            "color": {"type": "string"}
          }
        }
      }
    },
    "read_only": {"$ref": "#/$defs/pairs"},
    "mandatory": {"$ref": "#/$defs/pairs"},
    "signature_field": {"type": "string", "minLength": 1},
    "root_key": {"type": "string", "minLength": 1},
    "stripped_keys": {"type": "array", "items": {"type": "string"}}
  },
  "$defs": {
    "pairs": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// document is the on-disk layout of a rules file.
type document struct {
	Enums          yaml.Node           `yaml:"enums"`
	ReadOnly       map[string][]string `yaml:"read_only"`
	Mandatory      map[string][]string `yaml:"mandatory"`
	SignatureField string              `yaml:"signature_field"`
	RootKey        string              `yaml:"root_key"`
	StrippedKeys   []string            `yaml:"stripped_keys"`
}

// LoadFile reads and validates a YAML or JSON rules file.
func LoadFile(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("dictionary: read %s: %w", path, err)
	}
	rules, err := Load(data)
	if err != nil {
		return Rules{}, fmt.Errorf("dictionary: %s: %w", path, err)
	}
	return rules, nil
}

// Load parses a YAML or JSON rules document. The document is validated
// against the rules schema and every transition must point at a state of the
// same enum. Omitted sections are empty; omitted reserved names fall back to
// their defaults.
func Load(data []byte) (Rules, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Rules{}, fmt.Errorf("dictionary: empty rules document")
	}

	if err := validateDocument(data); err != nil {
		return Rules{}, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Rules{}, fmt.Errorf("dictionary: parse rules: %w", err)
	}

	names, enums, err := decodeEnums(&doc.Enums)
	if err != nil {
		return Rules{}, err
	}

	return NewRules(RulesConfig{
		Enums:          NewDictionary(names, enums),
		ReadOnly:       NewPairSet(doc.ReadOnly),
		Mandatory:      NewPairSet(doc.Mandatory),
		SignatureField: doc.SignatureField,
		RootKey:        doc.RootKey,
		StrippedKeys:   doc.StrippedKeys,
	}), nil
}

// decodeEnums walks the mapping node directly so field order follows the file.
func decodeEnums(node *yaml.Node) ([]string, map[string]Enum, error) {
	enums := make(map[string]Enum)
	if node == nil || node.Kind == 0 {
		return nil, enums, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("dictionary: enums must be a mapping")
	}

	var names []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.TrimSpace(node.Content[i].Value)
		var states []State
		if err := node.Content[i+1].Decode(&states); err != nil {
			return nil, nil, fmt.Errorf("dictionary: enum %q: %w", name, err)
		}
		if err := checkTransitions(name, states); err != nil {
			return nil, nil, err
		}
		if _, exists := enums[name]; !exists {
			names = append(names, name)
		}
		enums[name] = NewEnum(states...)
	}
	return names, enums, nil
}

func checkTransitions(name string, states []State) error {
	labels := make(map[string]struct{}, len(states))
	for _, state := range states {
		if _, dup := labels[state.Label]; dup {
			return fmt.Errorf("dictionary: enum %q declares state %q twice", name, state.Label)
		}
		labels[state.Label] = struct{}{}
	}
	for _, state := range states {
		for _, out := range state.Outs {
			if _, ok := labels[out]; !ok {
				return fmt.Errorf("dictionary: enum %q state %q transitions to unknown state %q", name, state.Label, out)
			}
		}
	}
	return nil
}

func validateDocument(data []byte) error {
	schema, err := rulesSchemaValidator()
	if err != nil {
		return err
	}

	// Route YAML through JSON so the validator sees JSON-native types.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dictionary: parse rules: %w", err)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("dictionary: normalise rules: %w", err)
	}
	var normalised any
	if err := json.Unmarshal(encoded, &normalised); err != nil {
		return fmt.Errorf("dictionary: normalise rules: %w", err)
	}

	if err := schema.Validate(normalised); err != nil {
		return fmt.Errorf("dictionary: invalid rules: %w", err)
	}
	return nil
}

func rulesSchemaValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(rulesSchemaURL, strings.NewReader(rulesSchema)); err != nil {
			schemaErr = fmt.Errorf("dictionary: load rules schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(rulesSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("dictionary: compile rules schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Encode renders rules back into the YAML layout accepted by Load.
func Encode(r Rules) ([]byte, error) {
	enums := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range r.Enums().Fields() {
		enum, _ := r.Enums().Enum(field)
		var states yaml.Node
		if err := states.Encode(enum.States()); err != nil {
			return nil, fmt.Errorf("dictionary: encode enum %q: %w", field, err)
		}
		enums.Content = append(enums.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: field},
			&states,
		)
	}

	out := struct {
		Enums          *yaml.Node          `yaml:"enums"`
		ReadOnly       map[string][]string `yaml:"read_only"`
		Mandatory      map[string][]string `yaml:"mandatory"`
		SignatureField string              `yaml:"signature_field"`
		RootKey        string              `yaml:"root_key"`
		StrippedKeys   []string            `yaml:"stripped_keys"`
	}{
		Enums:          enums,
		ReadOnly:       r.ReadOnly().Map(),
		Mandatory:      r.Mandatory().Map(),
		SignatureField: r.SignatureField(),
		RootKey:        r.RootKey(),
		StrippedKeys:   r.StrippedKeys(),
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("dictionary: encode rules: %w", err)
	}
	return data, nil
}
