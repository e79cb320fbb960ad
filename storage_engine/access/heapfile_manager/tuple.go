package heapfile

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"HeapDB/types"
)

/*
Tuple binary layout, driven entirely by the table schema:

	[ null bitmap ][ non-null field values in column declaration order ]

The null bitmap is ceil(n_cols/8) bytes and is present exactly when the
schema has any nullable column; bit i (LSB-first within each byte) is set
when column i is NULL. A NULL field contributes nothing to the payload
beyond its bitmap bit.

Field encodings:

	INT      4-byte signed integer, little-endian
	BOOLEAN  1 byte, 0 or 1
	VARCHAR  [ len uint16 ][ len bytes of UTF-8 ]

There is no per-field offset table inside a tuple: decoding walks the
schema's column order and widths to find where each field begins. Both
directions are pure functions of bytes + schema, so the codec is testable
without the page or cache layers.
*/

// EncodeTuple packs one value per schema column (nil = NULL) into tuple
// bytes. Values must already be in column declaration order.
func EncodeTuple(schema *types.TableSchema, values []interface{}) ([]byte, error) {
	if len(values) != len(schema.Columns) {
		return nil, fmt.Errorf("encode tuple: %d values for %d columns", len(values), len(schema.Columns))
	}

	bitmapSize := schema.NullBitmapSize()
	out := make([]byte, bitmapSize)

	for i, col := range schema.Columns {
		if values[i] == nil {
			if !col.Nullable {
				return nil, fmt.Errorf("encode tuple: column '%s' is not nullable", col.Name)
			}
			out[i/8] |= 1 << (i % 8)
			continue
		}

		switch col.Type {
		case types.TypeInt:
			v, err := toInt32(values[i])
			if err != nil {
				return nil, errors.Wrapf(err, "encode tuple: column '%s'", col.Name)
			}
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], uint32(v))
			out = append(out, buf[:]...)

		case types.TypeBoolean:
			v, ok := values[i].(bool)
			if !ok {
				return nil, fmt.Errorf("encode tuple: column '%s' expects BOOLEAN, got %T", col.Name, values[i])
			}
			if v {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}

		case types.TypeVarchar:
			v, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("encode tuple: column '%s' expects VARCHAR, got %T", col.Name, values[i])
			}
			if len(v) > math.MaxUint16 {
				return nil, fmt.Errorf("encode tuple: column '%s' value is %d bytes, max %d", col.Name, len(v), math.MaxUint16)
			}
			var lenBuf [2]byte
			binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(v)))
			out = append(out, lenBuf[:]...)
			out = append(out, v...)

		default:
			return nil, fmt.Errorf("encode tuple: column '%s' has unknown type '%s'", col.Name, col.Type)
		}
	}

	return out, nil
}

// DecodeTuple unpacks tuple bytes into one value per schema column, in
// declaration order. NULL columns come back as nil.
func DecodeTuple(schema *types.TableSchema, raw []byte) ([]interface{}, error) {
	bitmapSize := schema.NullBitmapSize()
	if len(raw) < bitmapSize {
		return nil, fmt.Errorf("decode tuple: %d bytes is smaller than the %d byte null bitmap", len(raw), bitmapSize)
	}
	bitmap := raw[:bitmapSize]
	pos := bitmapSize

	values := make([]interface{}, len(schema.Columns))
	for i, col := range schema.Columns {
		if bitmapSize > 0 && bitmap[i/8]&(1<<(i%8)) != 0 {
			values[i] = nil
			continue
		}

		switch col.Type {
		case types.TypeInt:
			if pos+4 > len(raw) {
				return nil, fmt.Errorf("decode tuple: truncated INT column '%s'", col.Name)
			}
			values[i] = int32(binary.LittleEndian.Uint32(raw[pos:]))
			pos += 4

		case types.TypeBoolean:
			if pos+1 > len(raw) {
				return nil, fmt.Errorf("decode tuple: truncated BOOLEAN column '%s'", col.Name)
			}
			values[i] = raw[pos] != 0
			pos++

		case types.TypeVarchar:
			if pos+2 > len(raw) {
				return nil, fmt.Errorf("decode tuple: truncated VARCHAR length for column '%s'", col.Name)
			}
			strLen := int(binary.LittleEndian.Uint16(raw[pos:]))
			pos += 2
			if pos+strLen > len(raw) {
				return nil, fmt.Errorf("decode tuple: truncated VARCHAR column '%s'", col.Name)
			}
			values[i] = string(raw[pos : pos+strLen])
			pos += strLen

		default:
			return nil, fmt.Errorf("decode tuple: column '%s' has unknown type '%s'", col.Name, col.Type)
		}
	}

	return values, nil
}

// toInt32 accepts the integer widths callers commonly hand in through the
// executor interface and range-checks them down to the stored int32.
func toInt32(v interface{}) (int32, error) {
	switch n := v.(type) {
	case int32:
		return n, nil
	case int:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, fmt.Errorf("INT value %d out of range", n)
		}
		return int32(n), nil
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, fmt.Errorf("INT value %d out of range", n)
		}
		return int32(n), nil
	default:
		return 0, fmt.Errorf("expects INT, got %T", v)
	}
}
