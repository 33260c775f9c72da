package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlType is the on-disk form of a Type.
//
//	name: Employee
//	defaults:
//	  header: default.BLUE_HEADER
//	fields:
//	  - name: info
//	    header: Employee
//	    fields:
//	      - {name: name, header: Name}
//	      - {name: age, header: Age, kind: int}
//	  - name: tags
//	    kind: list
type yamlType struct {
	Name     string       `yaml:"name"`
	Defaults yamlDefaults `yaml:"defaults"`
	Fields   []yamlField  `yaml:"fields"`
}

type yamlDefaults struct {
	Header string `yaml:"header"`
	Body   string `yaml:"body"`
}

type yamlField struct {
	Name        string      `yaml:"name"`
	Header      string      `yaml:"header"`
	Kind        string      `yaml:"kind"`
	HeaderStyle string      `yaml:"header_style"`
	BodyStyle   string      `yaml:"body_style"`
	Fields      []yamlField `yaml:"fields"`
}

// LoadFile reads a Type from a YAML file.
func LoadFile(path string) (*Type, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a Type from YAML. Keys it does not know are ignored, so the
// schema can share a file with other configuration.
func ParseYAML(data []byte) (*Type, error) {
	var yt yamlType
	if err := yaml.Unmarshal(data, &yt); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	fields, err := convertFields(yt.Fields)
	if err != nil {
		return nil, err
	}
	return &Type{
		Name:   yt.Name,
		Fields: fields,
		Defaults: Defaults{
			Header: ParseStyleRef(yt.Defaults.Header),
			Body:   ParseStyleRef(yt.Defaults.Body),
		},
	}, nil
}

func convertFields(yfs []yamlField) ([]Field, error) {
	out := make([]Field, 0, len(yfs))
	for _, yf := range yfs {
		f := Field{
			Name:        yf.Name,
			Header:      yf.Header,
			Kind:        KindString,
			HeaderStyle: ParseStyleRef(yf.HeaderStyle),
			BodyStyle:   ParseStyleRef(yf.BodyStyle),
		}
		if yf.Kind != "" {
			k, ok := ParseKind(yf.Kind)
			if !ok {
				return nil, fmt.Errorf("%w: field %q: unknown kind %q", ErrSchema, yf.Name, yf.Kind)
			}
			f.Kind = k
		}
		if len(yf.Fields) > 0 {
			children, err := convertFields(yf.Fields)
			if err != nil {
				return nil, err
			}
			f.Kind = KindStruct
			f.Type = &Type{Name: yf.Name, Fields: children}
		}
		out = append(out, f)
	}
	return out, nil
}
