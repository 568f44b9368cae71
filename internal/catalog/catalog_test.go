package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntities_DashboardOrder(t *testing.T) {
	var labels []string
	for _, e := range Entities() {
		labels = append(labels, e.Label)
	}

	assert.Equal(t, []string{
		"Admin", "Staff", "Supplier", "Book", "Customer", "Orders", "OrderDetails", "Supply",
	}, labels)
}

func TestEntities_ReturnsCopy(t *testing.T) {
	list := Entities()
	list[0].Table = "mutated"

	e, err := Lookup("admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", e.Table)
}

func TestLookup(t *testing.T) {
	t.Run("case insensitive", func(t *testing.T) {
		e, err := Lookup("OrderDetails")
		require.NoError(t, err)
		assert.Equal(t, "orderdetails", e.Table)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := Lookup("users; DROP TABLE book")
		assert.ErrorIs(t, err, ErrUnknownTable)
	})
}

func TestJunctionTables(t *testing.T) {
	var junctions []string
	pairs := 0
	for _, e := range Entities() {
		assert.True(t, e.Editable, "%s should offer update", e.Table)
		if e.IsJunction() {
			junctions = append(junctions, e.Table)
		}
		pairs += len(e.ForeignKeys)
	}

	assert.Equal(t, []string{"orders", "orderdetails", "supply"}, junctions)
	assert.Equal(t, 6, pairs)
}

func TestEntity_ForeignKey(t *testing.T) {
	orders, err := Lookup("orders")
	require.NoError(t, err)

	fk, ok := orders.ForeignKey("customer_id")
	require.True(t, ok)
	assert.Equal(t, "customer", fk.RefTable)
	assert.Equal(t, "Customer_ID", fk.RefColumn)

	_, ok = orders.ForeignKey("Order_Date")
	assert.False(t, ok)

	details, err := Lookup("orderdetails")
	require.NoError(t, err)
	fk, ok = details.ForeignKey("Order_ID")
	require.True(t, ok)
	assert.Equal(t, "orders", fk.RefTable)
}
