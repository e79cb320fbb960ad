package storageengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeapDB/config"
	"HeapDB/logging"
	"HeapDB/types"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.PoolSize = 8
	return cfg
}

func openEngine(t *testing.T, cfg config.Config) *StorageEngine {
	t.Helper()
	engine, err := Open(cfg, logging.Discard())
	require.NoError(t, err)
	return engine
}

func TestInsertScanAcrossRestart(t *testing.T) {
	cfg := testConfig(t)

	engine := openEngine(t, cfg)
	require.NoError(t, engine.CreateTable(types.TableSchema{
		TableName: "t",
		Columns: []types.ColumnDef{
			{Name: "a", Type: types.TypeInt, Nullable: true},
			{Name: "b", Type: types.TypeInt, Nullable: true},
			{Name: "c", Type: types.TypeInt, Nullable: true},
		},
	}))
	require.NoError(t, engine.Insert("t", []string{"a", "c"}, []interface{}{40, 50}))
	require.NoError(t, engine.Insert("t", []string{"b"}, []interface{}{60}))

	// Close flushes dirty frames; a fresh engine over the same directory
	// must read back byte-identical data.
	require.NoError(t, engine.Close())

	engine = openEngine(t, cfg)
	defer engine.Close()

	scanner, err := engine.Scan("t")
	require.NoError(t, err)

	var rows []types.Row
	for {
		row, ok := scanner.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, rows, 2)

	assert.Equal(t, int32(40), rows[0].Get("a"))
	assert.Nil(t, rows[0].Get("b"))
	assert.Equal(t, int32(50), rows[0].Get("c"))
	assert.Nil(t, rows[1].Get("a"))
	assert.Equal(t, int32(60), rows[1].Get("b"))
	assert.Nil(t, rows[1].Get("c"))
}

func TestConfigDrivesPoolSize(t *testing.T) {
	cfg := testConfig(t)
	cfg.PoolSize = 3

	engine := openEngine(t, cfg)
	defer engine.Close()

	assert.Equal(t, 3, engine.BufferPool.Capacity())
}

func TestScanUnknownTable(t *testing.T) {
	engine := openEngine(t, testConfig(t))
	defer engine.Close()

	_, err := engine.Scan("missing")
	require.Error(t, err)
}
