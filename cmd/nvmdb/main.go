// Command nvmdb boots the storage core against a file-backed (or, with
// -mem-pool, in-memory) tablespace, mounts the TPC-C warehouse table and
// its primary-key index (backed by a crash-recoverable structural oplog),
// and runs a short smoke workload of insert, read, index lookup and
// delete.
//
// Grounded on LeeNgari-RDBMS/cmd/rdbms/main.go's bootstrap shape
// (flag parsing, SetupLogger, directory bootstrap, "ready" log line)
// adapted to the engine's components instead of the teacher's
// database/table/REPL stack.
package main

import (
	"encoding/binary"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nvmdb/nvmdb/internal/catalog"
	"github.com/nvmdb/nvmdb/internal/catalog/tpcc"
	"github.com/nvmdb/nvmdb/internal/heap"
	"github.com/nvmdb/nvmdb/internal/index"
	"github.com/nvmdb/nvmdb/internal/logging"
	"github.com/nvmdb/nvmdb/internal/oplog"
	"github.com/nvmdb/nvmdb/internal/tablespace"
	"github.com/nvmdb/nvmdb/internal/tuple"
	"github.com/nvmdb/nvmdb/internal/txn"
)

func main() {
	dataDir := flag.String("data-dir", "nvmdb-data", "directory holding the tablespace and structural oplogs")
	memPool := flag.Bool("mem-pool", false, "use an in-memory tablespace instead of a file-backed one")
	flag.Parse()

	logger, closeFn := logging.SetupLogger()
	defer closeFn()
	slog.SetDefault(logger)
	time.Sleep(100 * time.Millisecond)
	slog.Info("starting nvmdb storage core")

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	pool, err := openPool(*dataDir, *memPool)
	if err != nil {
		slog.Error("failed to open tablespace", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	cat := catalog.New()
	warehouse, err := mountWarehouse(*dataDir, cat, pool)
	if err != nil {
		slog.Error("failed to mount warehouse table", "error", err)
		os.Exit(1)
	}

	slog.Info("nvmdb ready", "data_dir", *dataDir, "indexes", len(warehouse.Indexes()))
	runSmokeWorkload(warehouse)
}

func openPool(dataDir string, useMem bool) (*tablespace.Pool, error) {
	if useMem {
		return tablespace.NewMemPool(), nil
	}
	return tablespace.OpenFilePool(dataDir)
}

// mountWarehouse creates (or, on restart, would recover) the warehouse
// table and its primary key index. A full boot would do this for all
// nine TPC-C tables; one is wired here to keep the demo legible.
func mountWarehouse(dataDir string, cat *catalog.Catalog, pool *tablespace.Pool) (*catalog.TableHandle, error) {
	schema, err := tpcc.WarehouseSchema()
	if err != nil {
		return nil, err
	}

	handle, err := cat.CreateTable(tpcc.TableWarehouse, "warehouse", schema, pool, heap.NopUndoWriter{})
	if err != nil {
		return nil, err
	}

	pkDesc, err := tpcc.WarehousePK(schema)
	if err != nil {
		return nil, err
	}

	oplogPath := filepath.Join(dataDir, "warehouse_pk.oplog")
	log, err := oplog.Open(oplogPath, pkDesc.Name)
	if err != nil {
		return nil, err
	}
	pk := index.New(log)
	handle.AttachIndex(&catalog.IndexHandle{Desc: pkDesc, Idx: pk, Path: oplogPath})

	if err := handle.RebuildIndexes(); err != nil {
		slog.Warn("index rebuild reported failures", "error", err)
	}

	return handle, nil
}

// runSmokeWorkload exercises insert, heap read, indexed lookup and delete
// against a freshly mounted table, logging each step's outcome. Insert and
// delete go through the catalog's InsertRow/DeleteRow so the attached
// primary-key index is driven exactly as a real DML path would drive it.
func runSmokeWorkload(warehouse *catalog.TableHandle) {
	tx := txn.Begin(0, 0)

	row := make([]byte, warehouse.Schema.RowLen)
	wID := int32(1)
	binary.LittleEndian.PutUint32(row[warehouse.Schema.ColDesc(warehouse.Schema.ColIDByName("w_id")).Offset:], uint32(wID))

	rowID, err := warehouse.InsertRow(tx, row)
	if err != nil {
		slog.Error("insert failed", "error", err)
		return
	}
	slog.Info("inserted row", "row_id", rowID)

	if err := tx.Commit(1); err != nil {
		slog.Error("commit failed", "error", err)
		return
	}

	readTx := txn.Begin(1, 0)
	if _, status, err := warehouse.Heap.Read(readTx, rowID); err != nil || status != heap.StatusSuccess {
		slog.Error("read failed", "status", status, "error", err)
		return
	}

	pk := warehouse.Indexes()[0]
	probe := tuple.NewDRAMIndexTuple(pk.Desc)
	probeRow := tuple.RAMTuple{Schema: warehouse.Schema, Data: row}
	probe.ExtractFromTuple(&probeRow)
	key := probe.Encode(nil, uint32(rowID))
	if csn, found := pk.Idx.Lookup(key); !found || csn != index.InvalidCSN {
		slog.Error("index lookup failed", "found", found, "csn", csn)
		return
	}
	slog.Info("index lookup confirmed row", "row_id", rowID, "index", pk.Desc.Name)

	deleteTx := txn.Begin(1, 0)
	if status, err := warehouse.DeleteRow(deleteTx, rowID, 2); err != nil || status != heap.StatusSuccess {
		slog.Error("delete failed", "status", status, "error", err)
		return
	}
	if err := deleteTx.Commit(2); err != nil {
		slog.Error("commit failed", "error", err)
		return
	}
	slog.Info("smoke workload completed", "row_id", rowID)
}
