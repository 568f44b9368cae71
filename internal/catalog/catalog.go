// Package catalog lists the bookstore tables the console manages and the
// foreign-key columns rendered as dropdowns.
//
// Only tables registered here are ever interpolated into SQL.
package catalog

import (
	"errors"
	"strings"
)

var ErrUnknownTable = errors.New("unknown table")

// ForeignKey points a column at the id column of another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Entity is one managed table.
type Entity struct {
	Table       string
	Label       string
	Icon        string
	Editable    bool
	ForeignKeys []ForeignKey
}

// IsJunction reports whether the table links other entities.
func (e Entity) IsJunction() bool {
	return len(e.ForeignKeys) > 0
}

// ForeignKey returns the dropdown source for column, matched case-insensitively.
func (e Entity) ForeignKey(column string) (ForeignKey, bool) {
	for _, fk := range e.ForeignKeys {
		if strings.EqualFold(fk.Column, column) {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

// Dashboard order.
var entities = []Entity{
	{Table: "admin", Label: "Admin", Icon: "🧑‍💼", Editable: true},
	{Table: "staff", Label: "Staff", Icon: "👩‍💻", Editable: true},
	{Table: "supplier", Label: "Supplier", Icon: "🚚", Editable: true},
	{Table: "book", Label: "Book", Icon: "📚", Editable: true},
	{Table: "customer", Label: "Customer", Icon: "🧍", Editable: true},
	{
		Table: "orders", Label: "Orders", Icon: "🧾", Editable: true,
		ForeignKeys: []ForeignKey{
			{Column: "Customer_ID", RefTable: "customer", RefColumn: "Customer_ID"},
			{Column: "Staff_ID", RefTable: "staff", RefColumn: "Staff_ID"},
		},
	},
	{
		Table: "orderdetails", Label: "OrderDetails", Icon: "📦", Editable: true,
		ForeignKeys: []ForeignKey{
			{Column: "Order_ID", RefTable: "orders", RefColumn: "Order_ID"},
			{Column: "Book_ID", RefTable: "book", RefColumn: "Book_ID"},
		},
	},
	{
		Table: "supply", Label: "Supply", Icon: "🔗", Editable: true,
		ForeignKeys: []ForeignKey{
			{Column: "Supplier_ID", RefTable: "supplier", RefColumn: "Supplier_ID"},
			{Column: "Book_ID", RefTable: "book", RefColumn: "Book_ID"},
		},
	},
}

// Entities returns a copy of the registry in dashboard order.
func Entities() []Entity {
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}

// Lookup resolves a table name case-insensitively.
func Lookup(table string) (Entity, error) {
	name := strings.TrimSpace(table)
	for _, e := range entities {
		if strings.EqualFold(e.Table, name) {
			return e, nil
		}
	}
	return Entity{}, ErrUnknownTable
}

// Tables returns the registered table names.
func Tables() []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Table
	}
	return names
}
