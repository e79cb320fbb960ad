package heapfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeapDB/types"
)

func mixedSchema() types.TableSchema {
	return types.TableSchema{
		TableName: "people",
		Columns: []types.ColumnDef{
			{Name: "id", Type: types.TypeInt, Nullable: false},
			{Name: "name", Type: types.TypeVarchar, Nullable: true},
			{Name: "active", Type: types.TypeBoolean, Nullable: true},
			{Name: "age", Type: types.TypeInt, Nullable: true},
		},
	}
}

func TestTupleRoundTrip(t *testing.T) {
	schema := mixedSchema()

	cases := []struct {
		name   string
		values []interface{}
	}{
		{"no nulls", []interface{}{int32(1), "alice", true, int32(30)}},
		{"trailing null", []interface{}{int32(2), "bob", false, nil}},
		{"nulls in the middle", []interface{}{int32(3), nil, nil, int32(7)}},
		{"all nullable columns null", []interface{}{int32(4), nil, nil, nil}},
		{"empty varchar is not null", []interface{}{int32(5), "", true, int32(0)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := EncodeTuple(&schema, tc.values)
			require.NoError(t, err)

			got, err := DecodeTuple(&schema, raw)
			require.NoError(t, err)
			assert.Equal(t, tc.values, got)
		})
	}
}

func TestNullBitmap(t *testing.T) {
	schema := mixedSchema()

	raw, err := EncodeTuple(&schema, []interface{}{int32(9), nil, true, nil})
	require.NoError(t, err)

	// 4 columns → 1 bitmap byte; bits 1 and 3 are set, 0 and 2 clear.
	require.Equal(t, 1, schema.NullBitmapSize())
	assert.Equal(t, byte(0b1010), raw[0])

	// Non-null columns after a NULL must not drift: active decodes as true,
	// not as bytes borrowed from a neighbouring field.
	values, err := DecodeTuple(&schema, raw)
	require.NoError(t, err)
	assert.Equal(t, true, values[2])
	assert.Nil(t, values[1])
	assert.Nil(t, values[3])
}

func TestTupleLayoutWithoutNullableColumns(t *testing.T) {
	schema := types.TableSchema{
		TableName: "points",
		Columns: []types.ColumnDef{
			{Name: "x", Type: types.TypeInt},
			{Name: "y", Type: types.TypeInt},
		},
	}

	raw, err := EncodeTuple(&schema, []interface{}{int32(-1), int32(256)})
	require.NoError(t, err)

	// No nullable column anywhere → no bitmap byte, just two packed INTs.
	require.Len(t, raw, 8)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, raw[:4], "int32 -1, little-endian")
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00}, raw[4:], "int32 256, little-endian")

	got, err := DecodeTuple(&schema, raw)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int32(-1), int32(256)}, got)
}

func TestVarcharLengthPrefix(t *testing.T) {
	schema := types.TableSchema{
		TableName: "notes",
		Columns: []types.ColumnDef{
			{Name: "body", Type: types.TypeVarchar},
		},
	}

	raw, err := EncodeTuple(&schema, []interface{}{"héllo"})
	require.NoError(t, err)

	body := "héllo"
	require.Len(t, raw, 2+len(body))
	assert.Equal(t, byte(len(body)), raw[0], "u16 byte length, little-endian")
	assert.Equal(t, byte(0), raw[1])
	assert.Equal(t, body, string(raw[2:]))
}

func TestEncodeErrors(t *testing.T) {
	schema := mixedSchema()

	t.Run("null into not-null column", func(t *testing.T) {
		_, err := EncodeTuple(&schema, []interface{}{nil, "x", true, int32(1)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not nullable")
	})

	t.Run("arity mismatch", func(t *testing.T) {
		_, err := EncodeTuple(&schema, []interface{}{int32(1)})
		require.Error(t, err)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := EncodeTuple(&schema, []interface{}{int32(1), 42, true, int32(1)})
		require.Error(t, err)
	})
}

func TestDecodeTruncated(t *testing.T) {
	schema := mixedSchema()
	raw, err := EncodeTuple(&schema, []interface{}{int32(1), "alice", true, int32(30)})
	require.NoError(t, err)

	_, err = DecodeTuple(&schema, raw[:len(raw)-3])
	require.Error(t, err)
}

func TestIntWidthCoercion(t *testing.T) {
	schema := types.TableSchema{
		TableName: "t",
		Columns:   []types.ColumnDef{{Name: "n", Type: types.TypeInt}},
	}

	for _, v := range []interface{}{int(7), int32(7), int64(7)} {
		raw, err := EncodeTuple(&schema, []interface{}{v})
		require.NoError(t, err)
		got, err := DecodeTuple(&schema, raw)
		require.NoError(t, err)
		assert.Equal(t, int32(7), got[0])
	}

	_, err := EncodeTuple(&schema, []interface{}{int64(1) << 40})
	require.Error(t, err, "out of int32 range")
}
