package types_test

import (
	"testing"

	"github.com/mna/gloin/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFromName(t *testing.T) {
	reg := types.NewRegistry()

	cases := []struct {
		name string
		want types.TypeKind
	}{
		{"i32", types.I32},
		{"bool", types.Bool},
		{"string", types.String},
		{"*i32", types.PtrI32},
		{"*char", types.PtrChar},
		{"nope", types.Unknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, reg.TypeFromName(c.name), c.name)
	}
}

func TestRegisterStruct(t *testing.T) {
	reg := types.NewRegistry()

	id, err := reg.RegisterStruct("P", []types.RecordField{
		{Name: "x", Kind: types.I32},
		{Name: "y", Kind: types.I32},
	})
	require.NoError(t, err)

	ri, ok := reg.LookupStructByID(id)
	require.True(t, ok)
	assert.Equal(t, 8, ri.TotalSize)
	assert.Equal(t, 0, ri.Fields[0].Offset)
	assert.Equal(t, 4, ri.Fields[1].Offset)

	off, ok := reg.FieldOffset(id, "y")
	require.True(t, ok)
	assert.Equal(t, 4, off)

	ft, ok := reg.FieldType(id, "x")
	require.True(t, ok)
	assert.Equal(t, types.I32, ft)

	// duplicate registration is rejected
	_, err = reg.RegisterStruct("P", nil)
	assert.Error(t, err)
}

func TestRegisterEnum(t *testing.T) {
	reg := types.NewRegistry()

	id, err := reg.RegisterEnum("Color", []string{"Red", "Green", "Blue"})
	require.NoError(t, err)
	assert.True(t, id.IsEnum())

	ord, ok := reg.EnumOrdinal(id, "Green")
	require.True(t, ok)
	assert.EqualValues(t, 1, ord)

	info := reg.Info(id)
	assert.Equal(t, 4, info.Size)
	assert.True(t, info.Signed)
	assert.False(t, info.Numeric)
}

func TestCompatibleAndComparable(t *testing.T) {
	assert.True(t, types.Compatible(types.I32, types.I32))
	assert.False(t, types.Compatible(types.I32, types.I64))
	assert.False(t, types.Compatible(types.Bool, types.Bool)) // bool is not numeric

	assert.True(t, types.Comparable(types.Bool, types.Bool))
	assert.True(t, types.Comparable(types.I32, types.I32))
	assert.False(t, types.Comparable(types.I32, types.I64))
}

func TestBinaryResultType(t *testing.T) {
	assert.Equal(t, types.Bool, types.BinaryResultType(types.I32, types.I32, true))
	assert.Equal(t, types.I32, types.BinaryResultType(types.I32, types.I32, false))
	assert.Equal(t, types.Unknown, types.BinaryResultType(types.I32, types.I64, false))
}

func TestPointerHelpers(t *testing.T) {
	p := types.MakePointer(types.I32)
	assert.Equal(t, types.PtrI32, p)
	assert.Equal(t, types.I32, types.PointedTo(p))
	assert.Equal(t, types.Unknown, types.PointedTo(types.I32))
}
