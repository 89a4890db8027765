package tpcc

import "github.com/nvmdb/nvmdb/internal/tuple"

// Grounded on the IndexColumnDesc arrays in tpcc.h: WarehousePKDesc,
// DistrictPKDesc, StockPKDesc, ItemPKDesc, CustomerPKDesc,
// CustomerSKDesc, OrderPKDesc, OrderSKDesc, NewOrderPKDesc,
// OrderLinePKDesc. Column order matches the original; secondary indexes
// (customer-by-last-name, order-by-customer) are non-unique, matching
// the original's lookup semantics (multiple orders share a customer, and
// surname lookup must return every matching customer).

// Index ids, one per index descriptor below, forming the 4-byte prefix
// that isolates each index's keys within the ordered structure it is
// mounted on.
const (
	IndexWarehousePK uint32 = iota
	IndexDistrictPK
	IndexStockPK
	IndexItemPK
	IndexCustomerPK
	IndexCustomerSK
	IndexOrderPK
	IndexOrderSK
	IndexNewOrderPK
	IndexOrderLinePK
)

// WarehousePK returns the warehouse primary key index descriptor (w_id).
func WarehousePK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexWarehousePK, "warehouse_pk", schema, true, schema.ColIDByName("w_id"))
}

// DistrictPK returns the district primary key index descriptor (d_w_id, d_id).
func DistrictPK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexDistrictPK, "district_pk", schema, true,
		schema.ColIDByName("d_w_id"), schema.ColIDByName("d_id"))
}

// StockPK returns the stock primary key index descriptor (s_w_id, s_i_id).
func StockPK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexStockPK, "stock_pk", schema, true,
		schema.ColIDByName("s_w_id"), schema.ColIDByName("s_i_id"))
}

// ItemPK returns the item primary key index descriptor (i_id).
func ItemPK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexItemPK, "item_pk", schema, true, schema.ColIDByName("i_id"))
}

// CustomerPK returns the customer primary key index descriptor
// (c_w_id, c_d_id, c_id).
func CustomerPK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexCustomerPK, "customer_pk", schema, true,
		schema.ColIDByName("c_w_id"), schema.ColIDByName("c_d_id"), schema.ColIDByName("c_id"))
}

// CustomerSK returns the customer secondary key index descriptor
// (c_w_id, c_d_id, c_last, c_id), used for by-surname lookups. Not
// unique: several customers may share a surname within a district; the
// composite key's row-id suffix keeps each customer's entry distinct.
func CustomerSK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexCustomerSK, "customer_sk", schema, false,
		schema.ColIDByName("c_w_id"), schema.ColIDByName("c_d_id"),
		schema.ColIDByName("c_last"), schema.ColIDByName("c_id"))
}

// OrderPK returns the order primary key index descriptor
// (o_w_id, o_d_id, o_id).
func OrderPK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexOrderPK, "order_pk", schema, true,
		schema.ColIDByName("o_w_id"), schema.ColIDByName("o_d_id"), schema.ColIDByName("o_id"))
}

// OrderSK returns the order secondary key index descriptor
// (o_w_id, o_d_id, o_c_id, o_id), used for by-customer lookups.
func OrderSK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexOrderSK, "order_sk", schema, false,
		schema.ColIDByName("o_w_id"), schema.ColIDByName("o_d_id"),
		schema.ColIDByName("o_c_id"), schema.ColIDByName("o_id"))
}

// NewOrderPK returns the new-order primary key index descriptor
// (no_w_id, no_d_id, no_o_id).
func NewOrderPK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexNewOrderPK, "new_order_pk", schema, true,
		schema.ColIDByName("no_w_id"), schema.ColIDByName("no_d_id"), schema.ColIDByName("no_o_id"))
}

// OrderLinePK returns the order-line primary key index descriptor
// (ol_w_id, ol_d_id, ol_o_id, ol_number).
func OrderLinePK(schema *tuple.Schema) (*tuple.IndexDesc, error) {
	return tuple.NewIndexDesc(IndexOrderLinePK, "order_line_pk", schema, true,
		schema.ColIDByName("ol_w_id"), schema.ColIDByName("ol_d_id"),
		schema.ColIDByName("ol_o_id"), schema.ColIDByName("ol_number"))
}
