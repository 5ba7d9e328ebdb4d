// Package mapping declares the Signal Mapping (node spec) from spec §3:
// the immutable-after-initialization description of one node in the
// signal DAG, plus the closed Transform sum type from §4.5.
package mapping

import (
	"errors"
	"fmt"

	"github.com/canzero/sigdag/value"
)

// Source names an external input a leaf node is bound to, e.g.
// {can, "EngineSpeed"}.
type Source struct {
	Type string
	Name string
}

// UpdateTrigger controls when a derived node is eligible to activate (§3, §4.4).
type UpdateTrigger int

const (
	OnDependency UpdateTrigger = iota
	Periodic
	Both
)

func (t UpdateTrigger) String() string {
	switch t {
	case OnDependency:
		return "on-dependency"
	case Periodic:
		return "periodic"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// ErrUnknownUpdateTrigger is a configuration error (§7): the mapping file
// named a trigger keyword that isn't one of on-dependency/periodic/both.
var ErrUnknownUpdateTrigger = errors.New("mapping: unknown update_trigger")

func ParseUpdateTrigger(s string) (UpdateTrigger, error) {
	switch s {
	case "", "on-dependency":
		return OnDependency, nil
	case "periodic":
		return Periodic, nil
	case "both":
		return Both, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUpdateTrigger, s)
	}
}

// ErrUnknownDataType is a configuration error (§7).
var ErrUnknownDataType = errors.New("mapping: unknown datatype")

// ParseDataType resolves a mapping file's datatype string to a value.Kind.
func ParseDataType(s string) (value.Kind, error) {
	switch s {
	case "", "unspecified":
		return value.Unspecified, nil
	case "bool", "boolean":
		return value.Bool, nil
	case "int8":
		return value.Int8, nil
	case "int16":
		return value.Int16, nil
	case "int32":
		return value.Int32, nil
	case "int64":
		return value.Int64, nil
	case "uint8":
		return value.Uint8, nil
	case "uint16":
		return value.Uint16, nil
	case "uint32":
		return value.Uint32, nil
	case "uint64":
		return value.Uint64, nil
	case "float":
		return value.Float, nil
	case "double":
		return value.Double, nil
	case "string":
		return value.String, nil
	case "struct":
		return value.Struct, nil
	default:
		return value.Unspecified, fmt.Errorf("%w: %q", ErrUnknownDataType, s)
	}
}

// Transform is the closed sum type of §4.5: direct pass-through, a parsed
// expression, or a static value-map table. Exactly one of these is active
// per mapping; modeled as an enum-with-data rather than a class hierarchy
// per the spec's own design note in §9.
type Transform struct {
	Kind TransformKind

	// Code holds the raw expression string for the Code kind. The evaluator
	// package is responsible for parsing it into an AST once.
	Code string

	// Table holds the from->to lookup for the ValueMap kind.
	Table map[string]string
}

type TransformKind int

const (
	Direct TransformKind = iota
	Code
	ValueMap
)

// DirectTransform builds the zero-configuration direct pass-through transform.
func DirectTransform() Transform { return Transform{Kind: Direct} }

// CodeTransform builds a code transform from an (unparsed) expression string.
func CodeTransform(expr string) Transform { return Transform{Kind: Code, Code: expr} }

// ValueMapTransform builds a value-map transform from a from->to table.
func ValueMapTransform(table map[string]string) Transform {
	return Transform{Kind: ValueMap, Table: table}
}

// Mapping is one node's immutable specification (§3).
type Mapping struct {
	Name          string
	Source        *Source // nil unless this is a leaf node
	DataType      value.Kind
	DependsOn     []string
	Transform     Transform
	IsStruct      bool
	StructType    string
	IntervalMS    int
	UpdateTrigger UpdateTrigger

	// StructFieldAlias optionally renames a dependency's contribution to a
	// struct field; absent entries use the dependency's node name verbatim
	// (§4.5).
	StructFieldAlias map[string]string
}

// IsLeaf reports whether this mapping is fed directly by an external input
// rather than by other nodes (§3).
func (m Mapping) IsLeaf() bool { return m.Source != nil }

// ErrInvalidMapping is a configuration error (§7) for structural problems
// that are local to a single mapping (both source and depends_on set, a
// struct type without struct_type, etc.).
var ErrInvalidMapping = errors.New("mapping: invalid mapping")

// Validate checks the per-mapping invariants that don't require knowledge
// of the rest of the graph (cross-node checks like dangling depends_on and
// cycles are the topology resolver's job, §4.3).
func (m Mapping) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: signal name is required", ErrInvalidMapping)
	}
	if m.Source != nil && len(m.DependsOn) > 0 {
		return fmt.Errorf("%w: %s has both source and depends_on (mutually exclusive)", ErrInvalidMapping, m.Name)
	}
	if m.Source == nil && len(m.DependsOn) == 0 {
		return fmt.Errorf("%w: %s is neither a leaf (source) nor derived (depends_on)", ErrInvalidMapping, m.Name)
	}
	if m.IsStruct && m.StructType == "" {
		return fmt.Errorf("%w: %s declares is_struct without struct_type", ErrInvalidMapping, m.Name)
	}
	if m.IntervalMS < 0 {
		return fmt.Errorf("%w: %s has negative interval_ms", ErrInvalidMapping, m.Name)
	}
	if m.DataType == value.Unspecified && !(m.Source != nil && m.Transform.Kind == Direct) {
		return fmt.Errorf("%w: %s has UNSPECIFIED datatype outside a direct leaf transform", ErrInvalidMapping, m.Name)
	}
	return nil
}
