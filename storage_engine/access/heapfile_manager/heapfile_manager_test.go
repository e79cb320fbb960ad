package heapfile

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeapDB/logging"
	"HeapDB/storage_engine/bufferpool"
	"HeapDB/storage_engine/catalog"
	diskmanager "HeapDB/storage_engine/disk_manager"
	"HeapDB/storage_engine/page"
	"HeapDB/types"
)

func newTestHeap(t *testing.T, poolSize int) (*HeapFileManager, *catalog.CatalogManager, *bufferpool.BufferPool) {
	t.Helper()
	dir := t.TempDir()

	dm, err := diskmanager.Open(filepath.Join(dir, "test.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })

	cm, err := catalog.NewCatalogManager(dir, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(cm.Close)

	bp := bufferpool.NewBufferPool(poolSize, dm, logging.Discard())
	return NewHeapFileManager(cm, bp, logging.Discard()), cm, bp
}

func intTable(name string) types.TableSchema {
	return types.TableSchema{
		TableName: name,
		Columns: []types.ColumnDef{
			{Name: "a", Type: types.TypeInt, Nullable: true},
			{Name: "b", Type: types.TypeInt, Nullable: true},
			{Name: "c", Type: types.TypeInt, Nullable: true},
		},
	}
}

func scanAll(t *testing.T, hfm *HeapFileManager, table string) []types.Row {
	t.Helper()
	scanner, err := hfm.Scan(table)
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
	return rows
}

func TestColumnListInsertSemantics(t *testing.T) {
	hfm, cm, bp := newTestHeap(t, 8)
	require.NoError(t, cm.CreateTable(intTable("t")))

	_, err := hfm.Insert("t", []string{"a", "c"}, []interface{}{40, 50})
	require.NoError(t, err)
	_, err = hfm.Insert("t", []string{"b"}, []interface{}{60})
	require.NoError(t, err)

	rows := scanAll(t, hfm, "t")
	require.Len(t, rows, 2)

	assert.Equal(t, int32(40), rows[0].Get("a"))
	assert.Nil(t, rows[0].Get("b"))
	assert.Equal(t, int32(50), rows[0].Get("c"))

	assert.Nil(t, rows[1].Get("a"))
	assert.Equal(t, int32(60), rows[1].Get("b"))
	assert.Nil(t, rows[1].Get("c"))

	assert.Zero(t, bp.GetStats().PinnedPages, "insert and scan release every pin")
}

func TestColumnOrderInStatementIsIrrelevant(t *testing.T) {
	hfm, cm, _ := newTestHeap(t, 8)
	require.NoError(t, cm.CreateTable(intTable("t")))

	// Values arrive in (c, a) order but land in schema positions.
	_, err := hfm.Insert("t", []string{"c", "a"}, []interface{}{50, 40})
	require.NoError(t, err)

	rows := scanAll(t, hfm, "t")
	require.Len(t, rows, 1)
	assert.Equal(t, int32(40), rows[0].Get("a"))
	assert.Equal(t, int32(50), rows[0].Get("c"))
}

func TestScanOrderStability(t *testing.T) {
	hfm, cm, _ := newTestHeap(t, 8)
	require.NoError(t, cm.CreateTable(types.TableSchema{
		TableName: "t2",
		Columns: []types.ColumnDef{
			{Name: "x", Type: types.TypeInt, Nullable: true},
			{Name: "s", Type: types.TypeVarchar, Nullable: true},
			{Name: "flag", Type: types.TypeBoolean, Nullable: true},
		},
	}))

	inserts := []struct {
		columns []string
		values  []interface{}
	}{
		{[]string{"x", "s", "flag"}, []interface{}{1, "abc", true}},
		{[]string{"s"}, []interface{}{"def"}},
		{[]string{"x", "flag"}, []interface{}{3, false}},
		{[]string{"flag"}, []interface{}{true}},
	}
	for _, ins := range inserts {
		_, err := hfm.Insert("t2", ins.columns, ins.values)
		require.NoError(t, err)
	}

	rows := scanAll(t, hfm, "t2")
	require.Len(t, rows, 4)

	// Row 2 kept only its VARCHAR; everything else is NULL.
	assert.Nil(t, rows[1].Get("x"))
	assert.Equal(t, "def", rows[1].Get("s"))
	assert.Nil(t, rows[1].Get("flag"))

	assert.Equal(t, int32(1), rows[0].Get("x"))
	assert.Equal(t, int32(3), rows[2].Get("x"))
	assert.Equal(t, true, rows[3].Get("flag"))
}

func TestInsertValidation(t *testing.T) {
	hfm, cm, _ := newTestHeap(t, 8)
	require.NoError(t, cm.CreateTable(intTable("t")))

	t.Run("unknown table", func(t *testing.T) {
		_, err := hfm.Insert("nope", []string{"a"}, []interface{}{1})
		require.ErrorIs(t, err, catalog.ErrTableNotFound)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := hfm.Insert("t", []string{"z"}, []interface{}{1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no column")
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := hfm.Insert("t", []string{"a", "a"}, []interface{}{1, 2})
		require.Error(t, err)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		_, err := hfm.Insert("t", []string{"a", "b"}, []interface{}{1})
		require.Error(t, err)
	})
}

func TestMultiPageGrowth(t *testing.T) {
	hfm, cm, bp := newTestHeap(t, 4)
	require.NoError(t, cm.CreateTable(types.TableSchema{
		TableName: "big",
		Columns: []types.ColumnDef{
			{Name: "n", Type: types.TypeInt, Nullable: false},
			{Name: "payload", Type: types.TypeVarchar, Nullable: false},
		},
	}))

	// ~500 byte rows: a 4 KiB page holds a handful, so 50 rows span
	// several pages and several buffer pool evictions.
	payload := make([]byte, 500)
	for i := range payload {
		payload[i] = 'p'
	}
	const rowCount = 50
	for i := 0; i < rowCount; i++ {
		_, err := hfm.Insert("big", []string{"n", "payload"},
			[]interface{}{i, fmt.Sprintf("%03d-%s", i, payload)})
		require.NoError(t, err)
	}

	pageIDs, err := cm.PageIDs("big")
	require.NoError(t, err)
	assert.Greater(t, len(pageIDs), 1, "table grew past one page")

	rows := scanAll(t, hfm, "big")
	require.Len(t, rows, rowCount)
	for i, row := range rows {
		assert.Equal(t, int32(i), row.Get("n"), "insertion order preserved across pages")
	}

	assert.Zero(t, bp.GetStats().PinnedPages)
}

func TestRowPointersLocateTuples(t *testing.T) {
	hfm, cm, bp := newTestHeap(t, 8)
	require.NoError(t, cm.CreateTable(intTable("t")))

	ptr1, err := hfm.Insert("t", []string{"a"}, []interface{}{1})
	require.NoError(t, err)
	ptr2, err := hfm.Insert("t", []string{"a"}, []interface{}{2})
	require.NoError(t, err)

	assert.Equal(t, ptr1.PageID, ptr2.PageID, "both rows fit on the first page")
	assert.Equal(t, uint16(0), ptr1.SlotIndex)
	assert.Equal(t, uint16(1), ptr2.SlotIndex)

	pg, err := bp.FetchPage(firstPage(t, cm))
	require.NoError(t, err)
	defer bp.UnpinPage(pg.ID, false)

	raw, err := ReadTuple(pg, ptr2.SlotIndex)
	require.NoError(t, err)
	schema, err := cm.GetSchema("t")
	require.NoError(t, err)
	values, err := DecodeTuple(&schema, raw)
	require.NoError(t, err)
	assert.Equal(t, int32(2), values[0])
}

func firstPage(t *testing.T, cm *catalog.CatalogManager) page.PageID {
	t.Helper()
	got, ok, err := cm.FirstPageID("t")
	require.NoError(t, err)
	require.True(t, ok)
	return got
}
