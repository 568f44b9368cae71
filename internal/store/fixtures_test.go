package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/qawatake/fixify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/catalog"
)

type customerRow struct {
	ID    int64
	Name  string
	Email string
}

type staffRow struct {
	ID   int64
	Name string
	Role string
}

type bookRow struct {
	ID     int64
	Title  string
	Author string
	Price  float64
}

type orderRow struct {
	ID         int64
	CustomerID int64
	StaffID    int64
	Date       string
	Total      float64
}

type detailRow struct {
	ID       int64
	OrderID  int64
	BookID   int64
	Quantity int
	Price    float64
}

func customerModel(name, email string) *fixify.Model[customerRow] {
	return fixify.NewModel(&customerRow{Name: name, Email: email})
}

func staffModel(name string) *fixify.Model[staffRow] {
	return fixify.NewModel(&staffRow{Name: name, Role: "Clerk"})
}

func bookModel(title string, price float64) *fixify.Model[bookRow] {
	return fixify.NewModel(&bookRow{Title: title, Author: "Anon", Price: price})
}

func orderModel(date string) *fixify.Model[orderRow] {
	return fixify.NewModel(&orderRow{Date: date},
		fixify.ConnectorFunc(func(_ testing.TB, o *orderRow, c *customerRow) {
			o.CustomerID = c.ID
		}),
		fixify.ConnectorFunc(func(_ testing.TB, o *orderRow, s *staffRow) {
			o.StaffID = s.ID
		}),
	)
}

func detailModel(quantity int) *fixify.Model[detailRow] {
	return fixify.NewModel(&detailRow{Quantity: quantity},
		fixify.ConnectorFunc(func(_ testing.TB, d *detailRow, o *orderRow) {
			d.OrderID = o.ID
		}),
		fixify.ConnectorFunc(func(_ testing.TB, d *detailRow, b *bookRow) {
			d.BookID = b.ID
			d.Price = b.Price
		}),
	)
}

// insertFixtures writes each model once its parents have ids.
func insertFixtures(t *testing.T, db *sqlx.DB, f *fixify.Fixture) {
	t.Helper()

	exec := func(id *int64, query string, args ...any) error {
		res, err := db.Exec(query, args...)
		if err != nil {
			return err
		}
		*id, err = res.LastInsertId()
		return err
	}

	f.Iterate(func(model any) error {
		switch v := model.(type) {
		case *customerRow:
			return exec(&v.ID, "INSERT INTO customer (Name, Email) VALUES (?, ?)", v.Name, v.Email)
		case *staffRow:
			return exec(&v.ID, "INSERT INTO staff (Name, Role) VALUES (?, ?)", v.Name, v.Role)
		case *bookRow:
			return exec(&v.ID, "INSERT INTO book (Title, Author, Price, Stock) VALUES (?, ?, ?, 1)", v.Title, v.Author, v.Price)
		case *orderRow:
			return exec(&v.ID, "INSERT INTO orders (Customer_ID, Staff_ID, Order_Date, Total_Amount) VALUES (?, ?, ?, ?)",
				v.CustomerID, v.StaffID, v.Date, v.Total)
		case *detailRow:
			return exec(&v.ID, "INSERT INTO orderdetails (Order_ID, Book_ID, Quantity, Price) VALUES (?, ?, ?, ?)",
				v.OrderID, v.BookID, v.Quantity, v.Price)
		}
		return nil
	})
}

func TestStore_Fixtures_LinkedOrder(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	var order *fixify.Model[orderRow]
	first, second := detailModel(2), detailModel(1)
	novel, atlas := bookModel("Novel", 7.5), bookModel("Atlas", 30)

	f := fixify.New(t,
		customerModel("Gina Holt", "gina@mail.test").With(
			orderModel("2024-05-01").Bind(&order).With(first, second),
		),
		staffModel("Ivan Petrov").With(order),
		novel.With(first),
		atlas.With(second),
	)
	insertFixtures(t, s.DB(), f)

	require.NotZero(t, order.Value().ID)
	assert.Equal(t, order.Value().ID, first.Value().OrderID)
	assert.Equal(t, novel.Value().ID, first.Value().BookID)
	assert.Equal(t, 30.0, second.Value().Price)

	details, err := catalog.Lookup("orderdetails")
	require.NoError(t, err)
	fk, _ := details.ForeignKey("Order_ID")
	options, err := s.Options(ctx, fk)
	require.NoError(t, err)
	assert.Contains(t, options, formatID(order.Value().ID))

	// The order is still referenced by its details
	err = s.Delete(ctx, "orders", formatID(order.Value().ID))
	assert.ErrorIs(t, err, ErrForeignKey)

	require.NoError(t, s.Delete(ctx, "orderdetails", formatID(first.Value().ID)))
	require.NoError(t, s.Delete(ctx, "orderdetails", formatID(second.Value().ID)))
	require.NoError(t, s.Delete(ctx, "orders", formatID(order.Value().ID)))

	_, err = s.Get(ctx, "orders", formatID(order.Value().ID))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func formatID(id int64) string {
	return stringify(id)
}
