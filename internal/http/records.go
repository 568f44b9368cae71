package http

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/forms"
)

// recordOps carries out the writes shared by the web UI and the JSON API:
// the store call, the archive copy before a delete, and the audit entry.
type recordOps struct {
	store    RecordStore
	auditLog AuditLog
	archiver *audit.Archiver
}

func (o *recordOps) entity(c *gin.Context) (catalog.Entity, error) {
	return catalog.Lookup(c.Param("table"))
}

func (o *recordOps) form(ctx context.Context, entity catalog.Entity, id string) (*forms.Form, error) {
	builder := forms.NewBuilder(o.store)
	if id == "" {
		return builder.Build(ctx, entity, nil)
	}
	row, err := o.store.Get(ctx, entity.Table, id)
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx, entity, row)
}

func (o *recordOps) create(c *gin.Context, entity catalog.Entity, columns, values []string) error {
	err := o.store.Insert(c.Request.Context(), entity.Table, columns, values)
	if o.auditLog != nil {
		o.auditLog.LogInsert(actor(c), entity.Table, zipValues(columns, values), err)
	}
	return err
}

func (o *recordOps) update(c *gin.Context, entity catalog.Entity, id string, columns, values []string) error {
	err := o.store.Update(c.Request.Context(), entity.Table, id, columns, values)
	if o.auditLog != nil {
		o.auditLog.LogUpdate(actor(c), entity.Table, id, zipValues(columns, values), err)
	}
	return err
}

func (o *recordOps) remove(c *gin.Context, entity catalog.Entity, id string) error {
	ctx := c.Request.Context()

	if o.archiver.Enabled() {
		if err := o.archive(ctx, actor(c), entity, id); err != nil {
			return err
		}
	}

	err := o.store.Delete(ctx, entity.Table, id)
	if o.auditLog != nil {
		o.auditLog.LogDelete(actor(c), entity.Table, id, err)
	}
	return err
}

// archive writes the row to the archive directory. A row that cannot be
// archived is not deleted.
func (o *recordOps) archive(ctx context.Context, who string, entity catalog.Entity, id string) error {
	row, err := o.store.Get(ctx, entity.Table, id)
	if err != nil {
		return err
	}
	cols, err := o.store.Columns(ctx, entity.Table)
	if err != nil {
		return err
	}

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}

	filename, err := o.archiver.Archive(audit.Snapshot{
		Table:    entity.Table,
		RecordID: id,
		Actor:    who,
		Values:   zipValues(names, row),
	})
	if err != nil {
		return err
	}
	log.Info().Str("table", entity.Table).Str("id", id).Str("file", filename).Msg("row archived before delete")
	return nil
}

func zipValues(columns, values []string) map[string]string {
	out := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(values) {
			out[col] = values[i]
		}
	}
	return out
}

// parseRowID reads the :id path parameter.
func parseRowID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
