// Package tpcc carries the nine TPC-C benchmark table schemas used to
// exercise the storage core end to end: warehouse, district, customer,
// history, new-order, order, order-line, item and stock.
//
// Grounded verbatim on the column layouts in
// GaussDBKernel-nvmdb/benchmarks/tpcc.h (WarehouseColDesc,
// DistrictColDesc, ... HistoryColDesc), translated from the original's
// COL_DESC/VAR_DESC macro pairs into tuple.NewFixedColumn/NewVarcharColumn
// calls. Column order and widths are unchanged; only the representation
// (C array of C structs vs. a Go slice built through the schema
// package's constructors) differs.
package tpcc

import "github.com/nvmdb/nvmdb/internal/tuple"

// Table ids, matching the original's TableType enum order.
const (
	TableWarehouse uint32 = iota
	TableDistrict
	TableStock
	TableItem
	TableCustomer
	TableOrder
	TableNewOrder
	TableOrderLine
	TableHistory
)

func fixed(name string, t tuple.ColumnType) tuple.ColumnDesc {
	c, err := tuple.NewFixedColumn(name, t, true)
	if err != nil {
		panic(err)
	}
	return c
}

func varchar(name string, maxLen uint64) tuple.ColumnDesc {
	return tuple.NewVarcharColumn(name, maxLen, true)
}

// WarehouseSchema builds the warehouse table schema.
func WarehouseSchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("w_id", tuple.ColumnTypeInt),
		fixed("w_ytd", tuple.ColumnTypeLong),
		fixed("w_tax", tuple.ColumnTypeFloat),
		varchar("w_name", 11),
		varchar("w_street_1", 21),
		varchar("w_street_2", 21),
		varchar("w_city", 21),
		varchar("w_state", 3),
		varchar("w_zip", 10),
	})
}

// DistrictSchema builds the district table schema.
func DistrictSchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("d_id", tuple.ColumnTypeInt),
		fixed("d_w_id", tuple.ColumnTypeInt),
		fixed("d_ytd", tuple.ColumnTypeLong),
		fixed("d_tax", tuple.ColumnTypeFloat),
		fixed("d_next_o_id", tuple.ColumnTypeInt),
		varchar("d_name", 11),
		varchar("d_street_1", 21),
		varchar("d_street_2", 21),
		varchar("d_city", 21),
		varchar("d_state", 3),
		varchar("d_zip", 10),
	})
}

// StockSchema builds the stock table schema.
func StockSchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("s_w_id", tuple.ColumnTypeInt),
		fixed("s_i_id", tuple.ColumnTypeInt),
		fixed("s_quantity", tuple.ColumnTypeInt),
		varchar("s_dist_01", 25),
		varchar("s_dist_02", 25),
		varchar("s_dist_03", 25),
		varchar("s_dist_04", 25),
		varchar("s_dist_05", 25),
		varchar("s_dist_06", 25),
		varchar("s_dist_07", 25),
		varchar("s_dist_08", 25),
		varchar("s_dist_09", 25),
		varchar("s_dist_10", 25),
		varchar("s_data", 51),
	})
}

// ItemSchema builds the item table schema.
func ItemSchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("i_id", tuple.ColumnTypeInt),
		fixed("i_im_id", tuple.ColumnTypeInt),
		fixed("i_price", tuple.ColumnTypeFloat),
		varchar("i_name", 25),
		varchar("i_data", 51),
	})
}

// CustomerSchema builds the customer table schema.
func CustomerSchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("c_id", tuple.ColumnTypeInt),
		fixed("c_d_id", tuple.ColumnTypeInt),
		fixed("c_w_id", tuple.ColumnTypeInt),
		fixed("c_discount", tuple.ColumnTypeFloat),
		fixed("c_balance", tuple.ColumnTypeFloat),
		varchar("c_last", 17),
		varchar("c_credit", 3),
		varchar("c_data", 501),
		varchar("c_first", 17),
		varchar("c_middle", 3),
		varchar("c_street_1", 21),
		varchar("c_street_2", 21),
		varchar("c_city", 21),
		varchar("c_state", 3),
		varchar("c_zip", 10),
		varchar("c_phone", 17),
		varchar("c_since", 12),
		fixed("c_credit_lim", tuple.ColumnTypeInt),
	})
}

// OrderSchema builds the order table schema.
func OrderSchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("o_id", tuple.ColumnTypeInt),
		fixed("o_d_id", tuple.ColumnTypeInt),
		fixed("o_w_id", tuple.ColumnTypeInt),
		fixed("o_c_id", tuple.ColumnTypeInt),
		fixed("o_entry_d", tuple.ColumnTypeUnsignedLong),
		fixed("o_carrier_id", tuple.ColumnTypeInt),
		fixed("o_ol_cnt", tuple.ColumnTypeInt),
		fixed("o_all_local", tuple.ColumnTypeInt),
	})
}

// NewOrderSchema builds the new-order table schema.
func NewOrderSchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("no_o_id", tuple.ColumnTypeInt),
		fixed("no_d_id", tuple.ColumnTypeInt),
		fixed("no_w_id", tuple.ColumnTypeInt),
	})
}

// OrderLineSchema builds the order-line table schema.
func OrderLineSchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("ol_w_id", tuple.ColumnTypeInt),
		fixed("ol_d_id", tuple.ColumnTypeInt),
		fixed("ol_o_id", tuple.ColumnTypeInt),
		fixed("ol_number", tuple.ColumnTypeInt),
		fixed("ol_i_id", tuple.ColumnTypeInt),
		fixed("ol_supply_w_id", tuple.ColumnTypeInt),
		fixed("ol_delivery_d", tuple.ColumnTypeUnsignedLong),
		fixed("ol_quantity", tuple.ColumnTypeInt),
		fixed("ol_amount", tuple.ColumnTypeFloat),
		varchar("ol_dist_info", 25),
	})
}

// HistorySchema builds the history table schema.
func HistorySchema() (*tuple.Schema, error) {
	return tuple.NewSchema([]tuple.ColumnDesc{
		fixed("h_c_id", tuple.ColumnTypeInt),
		fixed("h_c_d_id", tuple.ColumnTypeInt),
		fixed("h_c_w_id", tuple.ColumnTypeInt),
		fixed("h_d_id", tuple.ColumnTypeInt),
		fixed("h_w_id", tuple.ColumnTypeInt),
		fixed("h_date", tuple.ColumnTypeUnsignedLong),
		fixed("h_amount", tuple.ColumnTypeLong),
		varchar("h_data", 25),
	})
}

// Schemas builds all nine TPC-C schemas, indexed by table id.
func Schemas() (map[uint32]*tuple.Schema, error) {
	builders := map[uint32]func() (*tuple.Schema, error){
		TableWarehouse: WarehouseSchema,
		TableDistrict:  DistrictSchema,
		TableStock:     StockSchema,
		TableItem:      ItemSchema,
		TableCustomer:  CustomerSchema,
		TableOrder:     OrderSchema,
		TableNewOrder:  NewOrderSchema,
		TableOrderLine: OrderLineSchema,
		TableHistory:   HistorySchema,
	}
	out := make(map[uint32]*tuple.Schema, len(builders))
	for id, build := range builders {
		schema, err := build()
		if err != nil {
			return nil, err
		}
		out[id] = schema
	}
	return out, nil
}
