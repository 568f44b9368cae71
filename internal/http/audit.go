package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/catalog"
	auditdb "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/entities"
)

const auditPageSize = 25

type AuditController struct {
	auditLog AuditLog
}

func NewAuditController(auditLog AuditLog) *AuditController {
	return &AuditController{
		auditLog: auditLog,
	}
}

// AuditLogPage renders the audit log UI
// GET /audit
func (ac *AuditController) AuditLogPage(c *gin.Context) {
	page := parsePage(c)
	filter := auditFilter(c)

	events, total, err := ac.auditLog.GetEvents(filter, auditPageSize, (page-1)*auditPageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to load audit events")
		c.HTML(http.StatusInternalServerError, "error", pageData(c, "Error", gin.H{
			"Status": http.StatusInternalServerError,
			"Error":  "Failed to load audit events",
		}))
		return
	}

	c.HTML(http.StatusOK, "audit", pageData(c, "Audit Log", gin.H{
		"Events":      events,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, auditPageSize),
		"TotalEvents": total,
		"EventType":   string(filter.EventType),
		"TableFilter": filter.Table,
		"EventTypes":  getEventTypes(),
		"Tables":      catalog.Tables(),
	}))
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page := parsePage(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(auditPageSize)))
	if limit < 1 || limit > 100 {
		limit = auditPageSize
	}
	offset := (page - 1) * limit

	events, total, err := ac.auditLog.GetEvents(auditFilter(c), limit, offset)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	pages := totalPages(total, limit)
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    page < pages,
		TotalPages: pages,
	})
}

// RecordHistoryPage renders every event of one record, oldest first.
// GET /audit/:table/:id
func (ac *AuditController) RecordHistoryPage(c *gin.Context) {
	entity, err := catalog.Lookup(c.Param("table"))
	if err != nil {
		c.HTML(http.StatusNotFound, "error", pageData(c, "Error", gin.H{
			"Status": http.StatusNotFound,
			"Error":  userMessage(err),
		}))
		return
	}

	id := parseRowID(c)
	events, err := ac.auditLog.GetRecordHistory(entity.Table, id)
	if err != nil {
		log.Error().Err(err).Str("table", entity.Table).Str("id", id).Msg("failed to load record history")
		c.HTML(http.StatusInternalServerError, "error", pageData(c, "Error", gin.H{
			"Status": http.StatusInternalServerError,
			"Error":  "Failed to load record history",
		}))
		return
	}

	c.HTML(http.StatusOK, "audit_history", pageData(c, entity.Label+" #"+id, gin.H{
		"Entity": entity,
		"ID":     id,
		"Events": events,
	}))
}

// GetRecordHistory returns the events of one record as JSON.
// GET /api/audit/:table/:id
func (ac *AuditController) GetRecordHistory(c *gin.Context) {
	entity, err := catalog.Lookup(c.Param("table"))
	if err != nil {
		respondStoreError(c, err, "resolve table")
		return
	}

	id := parseRowID(c)
	events, err := ac.auditLog.GetRecordHistory(entity.Table, id)
	if err != nil {
		respondInternalError(c, err, "load record history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":  entity.Table,
		"id":     id,
		"events": events,
	})
}

func auditFilter(c *gin.Context) auditdb.Filter {
	filter := auditdb.Filter{EventType: entities.AuditEventType(c.Query("type"))}
	if entity, err := catalog.Lookup(c.Query("table")); err == nil {
		filter.Table = entity.Table
	}
	return filter
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventInsert), Label: "Insert"},
		{Value: string(entities.AuditEventUpdate), Label: "Update"},
		{Value: string(entities.AuditEventDelete), Label: "Delete"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
		{Value: string(entities.AuditEventSystem), Label: "System"},
	}
}

type EventTypeOption struct {
	Value string
	Label string
}
