// Seed program: opens (or creates) a database under ./data, creates two
// tables, inserts rows using column-subset INSERTs and scans them back.
// Run: go run ./cmd/seed [config.ini]
package main

import (
	"fmt"
	"os"

	"HeapDB/config"
	"HeapDB/logging"
	storageengine "HeapDB/storage_engine"
	"HeapDB/types"
)

func main() {
	cfg := config.Default()
	if len(os.Args) > 1 {
		var err error
		cfg, err = config.Load(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	log := logging.New(cfg.LogLevel)

	engine, err := storageengine.Open(cfg, log)
	if err != nil {
		log.Fatalf("open engine: %v", err)
	}
	defer engine.Close()

	tables := []types.TableSchema{
		{
			TableName: "users",
			Columns: []types.ColumnDef{
				{Name: "id", Type: types.TypeInt, Nullable: false},
				{Name: "name", Type: types.TypeVarchar, Nullable: true},
				{Name: "active", Type: types.TypeBoolean, Nullable: true},
			},
		},
		{
			TableName: "scores",
			Columns: []types.ColumnDef{
				{Name: "a", Type: types.TypeInt, Nullable: true},
				{Name: "b", Type: types.TypeInt, Nullable: true},
				{Name: "c", Type: types.TypeInt, Nullable: true},
			},
		},
	}
	for _, schema := range tables {
		if engine.CatalogManager.TableExists(schema.TableName) {
			continue
		}
		if err := engine.CreateTable(schema); err != nil {
			log.Fatalf("create table %s: %v", schema.TableName, err)
		}
	}

	inserts := []struct {
		table   string
		columns []string
		values  []interface{}
	}{
		{"users", []string{"id", "name", "active"}, []interface{}{1, "alice", true}},
		{"users", []string{"id", "name"}, []interface{}{2, "bob"}},
		{"users", []string{"id"}, []interface{}{3}},
		{"scores", []string{"a", "c"}, []interface{}{40, 50}},
		{"scores", []string{"b"}, []interface{}{60}},
	}
	for _, ins := range inserts {
		if err := engine.Insert(ins.table, ins.columns, ins.values); err != nil {
			log.Fatalf("insert into %s: %v", ins.table, err)
		}
	}

	for _, table := range []string{"users", "scores"} {
		scanner, err := engine.Scan(table)
		if err != nil {
			log.Fatalf("scan %s: %v", table, err)
		}
		fmt.Printf("== %s ==\n", table)
		for {
			row, ok := scanner.Next()
			if !ok {
				break
			}
			fmt.Printf("%v\n", row.ToMap())
		}
		if err := scanner.Err(); err != nil {
			log.Fatalf("scan %s: %v", table, err)
		}
	}

	stats := engine.BufferPool.GetStats()
	fmt.Printf("buffer pool: %d/%d resident, %d dirty\n", stats.ResidentPages, stats.Capacity, stats.DirtyPages)
}
