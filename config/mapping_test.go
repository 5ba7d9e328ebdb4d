package config

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/canzero/sigdag/mapping"
)

func TestParseMappingDocument(t *testing.T) {
	doc := `
mappings:
  - signal: GearRaw
    source: {type: can, name: GearRaw}
    datatype: int32
  - signal: Gear
    depends_on: [GearRaw]
    datatype: string
    transform:
      mapping:
        - {from: "0", to: "P"}
        - {from: "1", to: "R"}
  - signal: Pose
    depends_on: [FloatX, FloatY]
    datatype: struct
    is_struct: true
    struct_type: Pose
    struct_field_alias: {FloatX: x, FloatY: y}
`
	ms, err := ParseMappingDocument(strings.NewReader(doc))
	assert.NoError(t, err)
	assert.Equal(t, 3, len(ms))

	assert.Equal(t, "GearRaw", ms[0].Name)
	assert.Equal(t, mapping.Source{Type: "can", Name: "GearRaw"}, *ms[0].Source)

	assert.Equal(t, mapping.ValueMap, ms[1].Transform.Kind)
	assert.Equal(t, "P", ms[1].Transform.Table["0"])

	assert.True(t, ms[2].IsStruct)
	assert.Equal(t, "x", ms[2].StructFieldAlias["FloatX"])
}

func TestParseMappingDocumentRejectsUnknownDataType(t *testing.T) {
	doc := `
mappings:
  - signal: Bad
    source: {type: can, name: Bad}
    datatype: not-a-type
`
	_, err := ParseMappingDocument(strings.NewReader(doc))
	assert.Error(t, err)
}
