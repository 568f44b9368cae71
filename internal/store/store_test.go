package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/demo"
)

func openMemoryDB(t *testing.T) *sqlx.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	db := openMemoryDB(t)
	require.NoError(t, demo.Seed(context.Background(), db))

	s, err := New(db, time.Second)
	require.NoError(t, err)
	return s
}

func TestStore_Columns(t *testing.T) {
	s := newSeededStore(t)

	cols, err := s.Columns(context.Background(), "book")
	require.NoError(t, err)

	var names []string
	for _, c := range cols {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Book_ID", "Title", "Author", "Genre", "Price", "Stock"}, names)
	assert.Equal(t, "PRI", cols[0].Key)
	assert.True(t, cols[3].Nullable)
	assert.False(t, cols[1].Nullable)
}

func TestStore_Columns_UnknownTable(t *testing.T) {
	s := newSeededStore(t)

	_, err := s.Columns(context.Background(), "sqlite_master")
	assert.ErrorIs(t, err, catalog.ErrUnknownTable)
}

func TestStore_List(t *testing.T) {
	s := newSeededStore(t)

	grid, err := s.List(context.Background(), "Admin")
	require.NoError(t, err)

	assert.Equal(t, []string{"Admin_ID", "Username", "Password"}, grid.Columns)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, "1", grid.Rows[0].ID())
	assert.Equal(t, Row{"1", "admin", "admin"}, grid.Rows[0])

	books, err := s.List(context.Background(), "book")
	require.NoError(t, err)
	assert.Equal(t, "9.99", books.Rows[0][4])
	assert.Equal(t, "12", books.Rows[0][5])
}

func TestStore_Insert(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	before, err := s.Count(ctx, "book")
	require.NoError(t, err)

	err = s.Insert(ctx, "book",
		[]string{"Title", "Author", "Genre", "Price", "Stock"},
		[]string{"Emma", "Jane Austen", "Classic", "8.50", "3"})
	require.NoError(t, err)

	after, err := s.Count(ctx, "book")
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	grid, err := s.List(ctx, "book")
	require.NoError(t, err)
	last := grid.Rows[len(grid.Rows)-1]
	assert.Equal(t, "Emma", last[1])
	assert.Equal(t, "8.5", last[4])
}

func TestStore_Insert_Errors(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	t.Run("unknown column", func(t *testing.T) {
		err := s.Insert(ctx, "book", []string{"Title", "Isbn"}, []string{"x", "y"})
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("mismatched values", func(t *testing.T) {
		err := s.Insert(ctx, "book", []string{"Title"}, []string{"x", "y"})
		assert.ErrorIs(t, err, ErrColumnMismatch)
	})

	t.Run("duplicate key", func(t *testing.T) {
		err := s.Insert(ctx, "admin", []string{"Username", "Password"}, []string{"admin", "other"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("missing referenced row", func(t *testing.T) {
		err := s.Insert(ctx, "orders",
			[]string{"Customer_ID", "Staff_ID", "Order_Date", "Total_Amount"},
			[]string{"999", "1", "2024-04-01", "10"})
		assert.ErrorIs(t, err, ErrForeignKey)
	})
}

func TestStore_GetAndUpdate(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	err := s.Update(ctx, "book", "2", []string{"Price", "Stock"}, []string{"15.75", "6"})
	require.NoError(t, err)

	row, err := s.Get(ctx, "book", "2")
	require.NoError(t, err)
	assert.Equal(t, Row{"2", "Dune", "Frank Herbert", "Science Fiction", "15.75", "6"}, row)

	err = s.Update(ctx, "book", "404", []string{"Stock"}, []string{"1"})
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = s.Get(ctx, "book", "404")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	before, err := s.List(ctx, "orderdetails")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "orderdetails", "2"))

	after, err := s.List(ctx, "orderdetails")
	require.NoError(t, err)
	require.Len(t, after.Rows, len(before.Rows)-1)
	for _, row := range after.Rows {
		assert.NotEqual(t, "2", row.ID())
	}

	assert.ErrorIs(t, s.Delete(ctx, "orderdetails", "2"), ErrRecordNotFound)
}

func TestStore_Delete_ReferencedRow(t *testing.T) {
	s := newSeededStore(t)

	err := s.Delete(context.Background(), "customer", "1")
	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestStore_Options(t *testing.T) {
	s := newSeededStore(t)

	orders, err := catalog.Lookup("orders")
	require.NoError(t, err)
	fk, ok := orders.ForeignKey("Staff_ID")
	require.True(t, ok)

	options, err := s.Options(context.Background(), fk)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, options)
}

func TestStore_LookupCredential(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	password, err := s.LookupCredential(ctx, "admin", "Username", "Password", "manager")
	require.NoError(t, err)
	assert.Equal(t, "shelf-keeper", password)

	_, err = s.LookupCredential(ctx, "admin", "Username", "Password", "nobody")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStore_QueryTimeout(t *testing.T) {
	s := newSeededStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.List(ctx, "book")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStringify(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{[]byte("Dune"), "Dune"},
		{int64(42), "42"},
		{14.5, "14.5"},
		{true, "true"},
		{date, "2024-03-01"},
		{stamp, "2024-03-01 14:05:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stringify(tt.in))
	}
}
