// Package config loads the external documents bootstrap consumes: the
// signal mapping file (§6 "Mapping configuration") and, optionally, a
// remote object-storage location to fetch it from.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/canzero/sigdag/mapping"
)

// rawDoc mirrors the YAML mapping-file shape of §6 verbatim; it is kept
// separate from mapping.Mapping so the wire format and the domain type
// can evolve independently, the way the teacher's own module-graph
// config documents are decoded into a builder-facing shape before use.
type rawDoc struct {
	Mappings []rawMapping `yaml:"mappings"`
}

type rawMapping struct {
	Signal           string            `yaml:"signal"`
	Source           *rawSource        `yaml:"source"`
	DataType         string            `yaml:"datatype"`
	IntervalMS       int               `yaml:"interval_ms"`
	DependsOn        []string          `yaml:"depends_on"`
	Transform        *rawTransform     `yaml:"transform"`
	UpdateTrigger    string            `yaml:"update_trigger"`
	IsStruct         bool              `yaml:"is_struct"`
	StructType       string            `yaml:"struct_type"`
	StructFieldAlias map[string]string `yaml:"struct_field_alias"`
}

type rawSource struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

type rawTransform struct {
	Code    string         `yaml:"code"`
	Mapping []rawTableEntry `yaml:"mapping"`
}

type rawTableEntry struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadMappingFile reads and parses a signal mapping document from disk.
func LoadMappingFile(path string) ([]mapping.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open mapping file: %w", err)
	}
	defer f.Close()

	return ParseMappingDocument(f)
}

// ParseMappingDocument decodes a mapping document from any reader, used
// both by LoadMappingFile and by the S3/minio loader (s3loader.go).
func ParseMappingDocument(r io.Reader) ([]mapping.Mapping, error) {
	var doc rawDoc
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("config: decode mapping document: %w", err)
	}

	out := make([]mapping.Mapping, 0, len(doc.Mappings))
	for _, rm := range doc.Mappings {
		m, err := rm.toMapping()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (rm rawMapping) toMapping() (mapping.Mapping, error) {
	dt, err := mapping.ParseDataType(rm.DataType)
	if err != nil {
		return mapping.Mapping{}, fmt.Errorf("config: signal %q: %w", rm.Signal, err)
	}
	trigger, err := mapping.ParseUpdateTrigger(rm.UpdateTrigger)
	if err != nil {
		return mapping.Mapping{}, fmt.Errorf("config: signal %q: %w", rm.Signal, err)
	}

	m := mapping.Mapping{
		Name:             rm.Signal,
		DataType:         dt,
		DependsOn:        rm.DependsOn,
		IntervalMS:       rm.IntervalMS,
		UpdateTrigger:    trigger,
		IsStruct:         rm.IsStruct,
		StructType:       rm.StructType,
		StructFieldAlias: rm.StructFieldAlias,
		Transform:        mapping.DirectTransform(),
	}
	if rm.Source != nil {
		m.Source = &mapping.Source{Type: rm.Source.Type, Name: rm.Source.Name}
	}
	if rm.Transform != nil {
		switch {
		case rm.Transform.Code != "":
			m.Transform = mapping.CodeTransform(rm.Transform.Code)
		case len(rm.Transform.Mapping) > 0:
			table := make(map[string]string, len(rm.Transform.Mapping))
			for _, e := range rm.Transform.Mapping {
				table[e.From] = e.To
			}
			m.Transform = mapping.ValueMapTransform(table)
		}
	}

	if err := m.Validate(); err != nil {
		return mapping.Mapping{}, err
	}
	return m, nil
}
