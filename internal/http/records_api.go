package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iancoleman/strcase"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/store"
)

// RecordsAPIController exposes the bookstore tables as JSON.
type RecordsAPIController struct {
	ops *recordOps
}

func NewRecordsAPIController(ops *recordOps) *RecordsAPIController {
	return &RecordsAPIController{ops: ops}
}

// ForeignKeyInfo describes a dropdown column.
type ForeignKeyInfo struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// TableInfo describes one managed table.
type TableInfo struct {
	Table       string           `json:"table"`
	Label       string           `json:"label"`
	Icon        string           `json:"icon"`
	Editable    bool             `json:"editable"`
	Rows        *int64           `json:"rows"`
	ForeignKeys []ForeignKeyInfo `json:"foreign_keys"`
}

// ListTables handles GET /api/tables
func (rc *RecordsAPIController) ListTables(c *gin.Context) {
	ctx := c.Request.Context()
	entities := catalog.Entities()
	tables := make([]TableInfo, len(entities))

	for i, e := range entities {
		info := TableInfo{
			Table:       e.Table,
			Label:       e.Label,
			Icon:        e.Icon,
			Editable:    e.Editable,
			ForeignKeys: make([]ForeignKeyInfo, len(e.ForeignKeys)),
		}
		for j, fk := range e.ForeignKeys {
			info.ForeignKeys[j] = ForeignKeyInfo{Column: fk.Column, RefTable: fk.RefTable, RefColumn: fk.RefColumn}
		}
		if count, err := rc.ops.store.Count(ctx, e.Table); err == nil {
			info.Rows = &count
		} else {
			log.Warn().Err(err).Str("table", e.Table).Msg("could not count rows")
		}
		tables[i] = info
	}

	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

// GetColumns handles GET /api/tables/:table/columns
func (rc *RecordsAPIController) GetColumns(c *gin.Context) {
	entity, err := rc.ops.entity(c)
	if err != nil {
		respondStoreError(c, err, "resolve table")
		return
	}

	cols, err := rc.ops.store.Columns(c.Request.Context(), entity.Table)
	if err != nil {
		respondStoreError(c, err, "read columns")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":   entity.Table,
		"columns": cols,
	})
}

// ListRows handles GET /api/tables/:table/rows
// Rows are keyed by the snake_case form of each column name.
func (rc *RecordsAPIController) ListRows(c *gin.Context) {
	entity, err := rc.ops.entity(c)
	if err != nil {
		respondStoreError(c, err, "resolve table")
		return
	}

	grid, err := rc.ops.store.List(c.Request.Context(), entity.Table)
	if err != nil {
		respondStoreError(c, err, "list rows")
		return
	}

	rows := make([]map[string]string, len(grid.Rows))
	for i, row := range grid.Rows {
		rows[i] = keyedRow(grid.Columns, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"table":   entity.Table,
		"columns": grid.Columns,
		"rows":    rows,
		"count":   len(rows),
	})
}

// GetRow handles GET /api/tables/:table/rows/:id
func (rc *RecordsAPIController) GetRow(c *gin.Context) {
	entity, err := rc.ops.entity(c)
	if err != nil {
		respondStoreError(c, err, "resolve table")
		return
	}

	ctx := c.Request.Context()
	row, err := rc.ops.store.Get(ctx, entity.Table, parseRowID(c))
	if err != nil {
		respondStoreError(c, err, "get row")
		return
	}
	cols, err := rc.ops.store.Columns(ctx, entity.Table)
	if err != nil {
		respondStoreError(c, err, "read columns")
		return
	}

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	c.JSON(http.StatusOK, keyedRow(names, row))
}

// CreateRow handles POST /api/tables/:table/rows
// The body is a JSON object of column values, the id column excluded.
func (rc *RecordsAPIController) CreateRow(c *gin.Context) {
	entity, err := rc.ops.entity(c)
	if err != nil {
		respondStoreError(c, err, "resolve table")
		return
	}

	body, err := bindRowBody(c)
	if err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}

	form, err := rc.ops.form(c.Request.Context(), entity, "")
	if err != nil {
		respondStoreError(c, err, "build form")
		return
	}

	values, err := form.BindMap(body)
	if err == nil {
		err = rc.ops.create(c, entity, form.Columns(), values)
	}
	if err != nil {
		respondStoreError(c, err, "insert row")
		return
	}

	respondCreated(c, SuccessResponse{
		Message: "record created",
		Data:    keyedRow(form.Columns(), values),
	})
}

// UpdateRow handles PUT /api/tables/:table/rows/:id
func (rc *RecordsAPIController) UpdateRow(c *gin.Context) {
	entity, err := rc.ops.entity(c)
	if err != nil {
		respondStoreError(c, err, "resolve table")
		return
	}
	if !entity.Editable {
		respondError(c, http.StatusMethodNotAllowed, "update is not available for "+entity.Table)
		return
	}

	body, err := bindRowBody(c)
	if err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}

	form, err := rc.ops.form(c.Request.Context(), entity, "")
	if err != nil {
		respondStoreError(c, err, "build form")
		return
	}

	values, err := form.BindMap(body)
	if err == nil {
		err = rc.ops.update(c, entity, parseRowID(c), form.Columns(), values)
	}
	if err != nil {
		respondStoreError(c, err, "update row")
		return
	}

	respondSuccess(c, "record updated")
}

// DeleteRow handles DELETE /api/tables/:table/rows/:id
func (rc *RecordsAPIController) DeleteRow(c *gin.Context) {
	entity, err := rc.ops.entity(c)
	if err != nil {
		respondStoreError(c, err, "resolve table")
		return
	}

	if err := rc.ops.remove(c, entity, parseRowID(c)); err != nil {
		respondStoreError(c, err, "delete row")
		return
	}

	respondSuccess(c, "record deleted")
}

// GetOptions handles GET /api/tables/:table/options/:column
// Only registered foreign-key columns have options.
func (rc *RecordsAPIController) GetOptions(c *gin.Context) {
	entity, err := rc.ops.entity(c)
	if err != nil {
		respondStoreError(c, err, "resolve table")
		return
	}

	fk, ok := entity.ForeignKey(c.Param("column"))
	if !ok {
		respondNotFound(c, "dropdown column")
		return
	}

	options, err := rc.ops.store.Options(c.Request.Context(), fk)
	if err != nil {
		respondStoreError(c, err, "load options")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":      entity.Table,
		"column":     fk.Column,
		"ref_table":  fk.RefTable,
		"ref_column": fk.RefColumn,
		"options":    options,
	})
}

func keyedRow(columns []string, row store.Row) map[string]string {
	out := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(row) {
			out[strcase.ToSnake(col)] = row[i]
		}
	}
	return out
}

// bindRowBody decodes a JSON object of column values. Numbers keep their
// literal text so large integers are not rewritten in exponent form.
func bindRowBody(c *gin.Context) (map[string]any, error) {
	if c.Request.Body == nil {
		return nil, errors.New("empty body")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}
