// Package forms builds add/edit forms for a bookstore table from its live
// column list.
package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/store"
)

// MissingFieldsMessage is shown when a submitted form has blank inputs.
const MissingFieldsMessage = "All fields required."

type Kind string

const (
	KindText   Kind = "text"
	KindSelect Kind = "select"
)

// Field is one input of a generated form.
type Field struct {
	Name    string
	Label   string
	Kind    Kind
	Options []string
	Value   string
}

// Form lists the inputs for every column except the id column, in source order.
type Form struct {
	Entity   catalog.Entity
	IDColumn string
	Fields   []Field
}

// MissingFieldsError names the blank inputs of a rejected submission.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return MissingFieldsMessage
}

// Schema is the part of the store the builder needs.
type Schema interface {
	Columns(ctx context.Context, table string) ([]store.Column, error)
	Options(ctx context.Context, fk catalog.ForeignKey) ([]string, error)
}

type Builder struct {
	schema Schema
}

func NewBuilder(schema Schema) *Builder {
	return &Builder{schema: schema}
}

// Build generates the form for entity. When current is non-nil its cells
// prefill the inputs; current must be in column order, id first.
func (b *Builder) Build(ctx context.Context, entity catalog.Entity, current store.Row) (*Form, error) {
	cols, err := b.schema.Columns(ctx, entity.Table)
	if err != nil {
		return nil, err
	}

	form := &Form{
		Entity:   entity,
		IDColumn: cols[0].Name,
		Fields:   make([]Field, 0, len(cols)-1),
	}

	for i, col := range cols[1:] {
		field := Field{
			Name:  col.Name,
			Label: col.Name,
			Kind:  KindText,
		}

		if fk, ok := entity.ForeignKey(col.Name); ok {
			field.Kind = KindSelect
			options, err := b.schema.Options(ctx, fk)
			if err != nil {
				// A broken lookup leaves the dropdown empty rather than failing the form
				log.Warn().Err(err).
					Str("component", "forms").
					Str("table", entity.Table).
					Str("column", col.Name).
					Msg("could not load dropdown options")
				options = []string{}
			}
			field.Options = options
		}

		if current != nil && i+1 < len(current) {
			field.Value = current[i+1]
		}

		form.Fields = append(form.Fields, field)
	}

	return form, nil
}

// Columns returns the field names in source order.
func (f *Form) Columns() []string {
	names := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		names[i] = field.Name
	}
	return names
}

// Bind reads the submitted values into the form and returns them in column
// order. Any blank value rejects the whole submission.
func (f *Form) Bind(values url.Values) ([]string, error) {
	out := make([]string, len(f.Fields))
	var missing []string

	for i := range f.Fields {
		v := strings.TrimSpace(values.Get(f.Fields[i].Name))
		f.Fields[i].Value = v
		if v == "" {
			missing = append(missing, f.Fields[i].Name)
		}
		out[i] = v
	}

	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	return out, nil
}

// BindMap is Bind for JSON bodies. Keys may be the column name in any case
// or its snake_case form.
func (f *Form) BindMap(body map[string]any) ([]string, error) {
	values := url.Values{}
	for key, raw := range body {
		if raw == nil {
			continue
		}
		for _, field := range f.Fields {
			if strings.EqualFold(key, field.Name) || strcase.ToSnake(key) == strcase.ToSnake(field.Name) {
				values.Set(field.Name, formatValue(raw))
			}
		}
	}
	return f.Bind(values)
}

// formatValue renders a decoded JSON value as the text a user would type.
// Floats never use exponent notation.
func formatValue(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprint(raw)
}
