package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return db
}

func TestRepository_LogEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	event := &entities.AuditEvent{
		Actor:       "admin",
		EventType:   entities.AuditEventInsert,
		Action:      "insert",
		Table:       "book",
		RecordID:    "5",
		Description: "Inserted into book",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	for i := 0; i < 15; i++ {
		event := &entities.AuditEvent{
			Actor:     "admin",
			EventType: entities.AuditEventInsert,
			Action:    "insert",
			Table:     "book",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}
		require.NoError(t, repo.LogEvent(event))
	}

	for i := 0; i < 5; i++ {
		event := &entities.AuditEvent{
			Actor:     "manager",
			EventType: entities.AuditEventDelete,
			Action:    "delete",
			Table:     "customer",
			Status:    entities.AuditStatusSuccess,
		}
		require.NoError(t, repo.LogEvent(event))
	}

	t.Run("get all events", func(t *testing.T) {
		events, total, err := repo.GetEvents(Filter{}, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("filter by actor", func(t *testing.T) {
		events, total, err := repo.GetEvents(Filter{Actor: "admin"}, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 15)
	})

	t.Run("filter by table", func(t *testing.T) {
		_, total, err := repo.GetEvents(Filter{Table: "customer"}, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents(Filter{Actor: "admin"}, 5, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 5)

		events2, _, err := repo.GetEvents(Filter{Actor: "admin"}, 5, 5)
		require.NoError(t, err)
		assert.Len(t, events2, 5)
		assert.NotEqual(t, events[0].ID, events2[0].ID)
	})

	t.Run("non-positive limit uses default page", func(t *testing.T) {
		events, _, err := repo.GetEvents(Filter{}, 0, -3)
		require.NoError(t, err)
		assert.Len(t, events, 20)
	})

	t.Run("order by created_at desc", func(t *testing.T) {
		events, _, err := repo.GetEvents(Filter{Actor: "admin"}, 10, 0)
		require.NoError(t, err)
		for i := 1; i < len(events); i++ {
			assert.False(t, events[i-1].CreatedAt.Before(events[i].CreatedAt))
		}
	})
}

func TestRepository_GetEventsByType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		Actor: "admin", EventType: entities.AuditEventAuth, Action: "login", Status: entities.AuditStatusSuccess,
	}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		Actor: "admin", EventType: entities.AuditEventDelete, Action: "delete", Table: "book", Status: entities.AuditStatusSuccess,
	}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		Actor: "intruder", EventType: entities.AuditEventAuth, Action: "login", Status: entities.AuditStatusFailed,
	}))

	events, total, err := repo.GetEventsByType(entities.AuditEventAuth, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, entities.AuditEventAuth, e.EventType)
	}
}

func TestRepository_GetRecordHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	now := time.Now()
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		Actor: "admin", EventType: entities.AuditEventInsert, Action: "insert",
		Table: "book", RecordID: "7", Status: entities.AuditStatusSuccess, CreatedAt: now.Add(-2 * time.Hour),
	}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		Actor: "admin", EventType: entities.AuditEventUpdate, Action: "update",
		Table: "book", RecordID: "7", Status: entities.AuditStatusSuccess, CreatedAt: now.Add(-1 * time.Hour),
	}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		Actor: "admin", EventType: entities.AuditEventUpdate, Action: "update",
		Table: "book", RecordID: "8", Status: entities.AuditStatusSuccess,
	}))

	events, err := repo.GetRecordHistory("book", "7")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "insert", events[0].Action)
	assert.Equal(t, "update", events[1].Action)
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	now := time.Now()

	oldEvent := &entities.AuditEvent{
		Actor:     "admin",
		EventType: entities.AuditEventInsert,
		Action:    "old_insert",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: now.Add(-48 * time.Hour),
	}
	newEvent := &entities.AuditEvent{
		Actor:     "admin",
		EventType: entities.AuditEventDelete,
		Action:    "new_delete",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: now.Add(-1 * time.Hour),
	}

	require.NoError(t, repo.LogEvent(oldEvent))
	require.NoError(t, repo.LogEvent(newEvent))

	deleted, err := repo.DeleteOldEvents(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := repo.GetEvents(Filter{}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events, 1)
	assert.Equal(t, "new_delete", events[0].Action)
}

func TestRepository_GetEventByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	event := &entities.AuditEvent{
		Actor:     "admin",
		EventType: entities.AuditEventSystem,
		Action:    "audit_cleanup",
		Status:    entities.AuditStatusSuccess,
	}

	require.NoError(t, repo.LogEvent(event))

	t.Run("existing event", func(t *testing.T) {
		found, err := repo.GetEventByID(event.ID)
		require.NoError(t, err)
		assert.Equal(t, event.ID, found.ID)
		assert.Equal(t, "audit_cleanup", found.Action)
	})

	t.Run("non-existing event", func(t *testing.T) {
		_, err := repo.GetEventByID(999)
		assert.Error(t, err)
	})
}
