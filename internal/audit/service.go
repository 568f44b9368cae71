package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/entities"
)

const maxFieldLen = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Error().Err(err).Str("action", event.Action).Msg("failed to log audit event")
		}
	}()
}

// Wait blocks until every LogAsync call has finished writing.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogInsert records an insert into a bookstore table.
func (s *Service) LogInsert(actor, table string, values map[string]string, err error) {
	s.logWrite(actor, entities.AuditEventInsert, table, "", values, err)
}

// LogUpdate records an update of one bookstore row.
func (s *Service) LogUpdate(actor, table, recordID string, values map[string]string, err error) {
	s.logWrite(actor, entities.AuditEventUpdate, table, recordID, values, err)
}

// LogDelete records a deletion of one bookstore row.
func (s *Service) LogDelete(actor, table, recordID string, err error) {
	s.logWrite(actor, entities.AuditEventDelete, table, recordID, nil, err)
}

func (s *Service) logWrite(actor string, eventType entities.AuditEventType, table, recordID string, values map[string]string, err error) {
	event := &entities.AuditEvent{
		Actor:       actor,
		EventType:   eventType,
		Action:      table + "_" + string(eventType),
		Table:       table,
		RecordID:    recordID,
		Description: describe(eventType, table, recordID),
		Status:      entities.AuditStatusSuccess,
	}

	if len(values) > 0 {
		if data, e := json.Marshal(values); e == nil {
			event.Metadata = string(data)
		}
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxFieldLen)
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(actor, action, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		Actor:     actor,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, maxFieldLen),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogSystem records a background maintenance event.
func (s *Service) LogSystem(action, description string, err error) {
	event := &entities.AuditEvent{
		Actor:       "system",
		EventType:   entities.AuditEventSystem,
		Action:      action,
		Description: truncate(description, maxFieldLen),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxFieldLen)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// GetRecordHistory lists the events recorded against one row.
func (s *Service) GetRecordHistory(table, recordID string) ([]entities.AuditEvent, error) {
	return s.repo.GetRecordHistory(table, recordID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func describe(eventType entities.AuditEventType, table, recordID string) string {
	switch eventType {
	case entities.AuditEventInsert:
		return fmt.Sprintf("Inserted into %s", table)
	case entities.AuditEventUpdate:
		return fmt.Sprintf("Updated %s #%s", table, recordID)
	case entities.AuditEventDelete:
		return fmt.Sprintf("Deleted %s #%s", table, recordID)
	}
	return string(eventType) + " " + table
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
