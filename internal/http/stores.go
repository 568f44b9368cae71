package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore/internal/catalog"
	auditdb "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/store"
)

// RecordStore defines the bookstore operations the controllers need.
// *store.Store satisfies it.
type RecordStore interface {
	Columns(ctx context.Context, table string) ([]store.Column, error)
	Options(ctx context.Context, fk catalog.ForeignKey) ([]string, error)
	List(ctx context.Context, table string) (*store.Grid, error)
	Get(ctx context.Context, table, id string) (store.Row, error)
	Insert(ctx context.Context, table string, columns, values []string) error
	Update(ctx context.Context, table, id string, columns, values []string) error
	Delete(ctx context.Context, table, id string) error
	Count(ctx context.Context, table string) (int64, error)
}

// AuditLog records writes and serves the audit pages.
// *audit.Service satisfies it.
type AuditLog interface {
	LogInsert(actor, table string, values map[string]string, err error)
	LogUpdate(actor, table, recordID string, values map[string]string, err error)
	LogDelete(actor, table, recordID string, err error)
	GetEvents(filter auditdb.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetRecordHistory(table, recordID string) ([]entities.AuditEvent, error)
}

// TaskRunner is the task queue surface used by the tasks endpoints.
// *tasks.Client satisfies it.
type TaskRunner interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
	EnqueueAuditCleanup(retentionDays int) (string, error)
}

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}
