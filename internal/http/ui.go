package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/forms"
	"github.com/mrlokans/bookstore/internal/store"
)

// Banners shown on the grid when a button needs a selected row.
const (
	msgSelectToEdit   = "Select a record to edit."
	msgSelectToDelete = "Please select a record."
)

// notices maps the done parameter set after a write onto the grid notice.
var notices = map[string]string{
	"added":   "Record added.",
	"updated": "Record updated.",
	"deleted": "Record deleted.",
}

// DashboardEntry is one entity button on the dashboard.
type DashboardEntry struct {
	Entity catalog.Entity
	Count  int64
	Err    bool
}

type UIController struct {
	ops *recordOps
}

func NewUIController(ops *recordOps) *UIController {
	return &UIController{
		ops: ops,
	}
}

// Dashboard renders one button per entity with its row count.
// GET /
func (controller *UIController) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	entities := catalog.Entities()
	entries := make([]DashboardEntry, len(entities))

	for i, e := range entities {
		entries[i].Entity = e
		count, err := controller.ops.store.Count(ctx, e.Table)
		if err != nil {
			log.Warn().Err(err).Str("table", e.Table).Msg("could not count rows")
			entries[i].Err = true
			continue
		}
		entries[i].Count = count
	}

	c.HTML(http.StatusOK, "dashboard", pageData(c, "Dashboard", gin.H{
		"Entries": entries,
	}))
}

// TablePage renders the grid of a table.
// GET /tables/:table
func (controller *UIController) TablePage(c *gin.Context) {
	entity, err := controller.ops.entity(c)
	if err != nil {
		controller.renderError(c, err)
		return
	}
	controller.renderGrid(c, entity, http.StatusOK, notices[c.Query("done")], "")
}

// NewRecordPage renders the add form.
// GET /tables/:table/new
func (controller *UIController) NewRecordPage(c *gin.Context) {
	entity, err := controller.ops.entity(c)
	if err != nil {
		controller.renderError(c, err)
		return
	}

	form, err := controller.ops.form(c.Request.Context(), entity, "")
	if err != nil {
		controller.renderGrid(c, entity, statusForError(err), "", userMessage(err))
		return
	}
	controller.renderForm(c, http.StatusOK, form, "", "")
}

// CreateRecord inserts the submitted form.
// POST /tables/:table
func (controller *UIController) CreateRecord(c *gin.Context) {
	entity, err := controller.ops.entity(c)
	if err != nil {
		controller.renderError(c, err)
		return
	}

	form, err := controller.ops.form(c.Request.Context(), entity, "")
	if err != nil {
		controller.renderGrid(c, entity, statusForError(err), "", userMessage(err))
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		controller.renderForm(c, http.StatusBadRequest, form, "", err.Error())
		return
	}

	values, err := form.Bind(c.Request.PostForm)
	if err == nil {
		err = controller.ops.create(c, entity, form.Columns(), values)
	}
	if err != nil {
		controller.renderForm(c, statusForError(err), form, "", userMessage(err))
		return
	}

	controller.redirectToGrid(c, entity, "added")
}

// EditRecordPage renders the edit form of the selected row.
// GET /tables/:table/edit?id=
func (controller *UIController) EditRecordPage(c *gin.Context) {
	entity, err := controller.ops.entity(c)
	if err != nil {
		controller.renderError(c, err)
		return
	}
	if !entity.Editable {
		controller.renderGrid(c, entity, http.StatusBadRequest, "", "Update is not available for "+entity.Label+".")
		return
	}

	id := selectedID(c)
	if id == "" {
		controller.renderGrid(c, entity, http.StatusBadRequest, "", msgSelectToEdit)
		return
	}

	form, err := controller.ops.form(c.Request.Context(), entity, id)
	if err != nil {
		controller.renderGrid(c, entity, statusForError(err), "", userMessage(err))
		return
	}
	controller.renderForm(c, http.StatusOK, form, id, "")
}

// UpdateRecord saves the edit form.
// POST /tables/:table/rows/:id
func (controller *UIController) UpdateRecord(c *gin.Context) {
	entity, err := controller.ops.entity(c)
	if err != nil {
		controller.renderError(c, err)
		return
	}
	if !entity.Editable {
		controller.renderGrid(c, entity, http.StatusBadRequest, "", "Update is not available for "+entity.Label+".")
		return
	}

	id := parseRowID(c)
	form, err := controller.ops.form(c.Request.Context(), entity, "")
	if err != nil {
		controller.renderGrid(c, entity, statusForError(err), "", userMessage(err))
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		controller.renderForm(c, http.StatusBadRequest, form, id, err.Error())
		return
	}

	values, err := form.Bind(c.Request.PostForm)
	if err == nil {
		err = controller.ops.update(c, entity, id, form.Columns(), values)
	}
	if err != nil {
		controller.renderForm(c, statusForError(err), form, id, userMessage(err))
		return
	}

	controller.redirectToGrid(c, entity, "updated")
}

// DeleteRecordPage asks for confirmation before a delete.
// GET /tables/:table/delete?id=
func (controller *UIController) DeleteRecordPage(c *gin.Context) {
	entity, err := controller.ops.entity(c)
	if err != nil {
		controller.renderError(c, err)
		return
	}

	id := selectedID(c)
	if id == "" {
		controller.renderGrid(c, entity, http.StatusBadRequest, "", msgSelectToDelete)
		return
	}

	c.HTML(http.StatusOK, "confirm_delete", pageData(c, "Delete "+entity.Label, gin.H{
		"Entity": entity,
		"ID":     id,
	}))
}

// DeleteRecord removes the confirmed row.
// POST /tables/:table/rows/:id/delete
func (controller *UIController) DeleteRecord(c *gin.Context) {
	entity, err := controller.ops.entity(c)
	if err != nil {
		controller.renderError(c, err)
		return
	}

	if err := controller.ops.remove(c, entity, parseRowID(c)); err != nil {
		controller.renderGrid(c, entity, statusForError(err), "", userMessage(err))
		return
	}

	controller.redirectToGrid(c, entity, "deleted")
}

func (controller *UIController) renderGrid(c *gin.Context, entity catalog.Entity, status int, notice, banner string) {
	grid, err := controller.ops.store.List(c.Request.Context(), entity.Table)
	if err != nil {
		log.Error().Err(err).Str("table", entity.Table).Msg("could not load grid")
		if banner == "" {
			banner = userMessage(err)
		}
		grid = &store.Grid{Rows: []store.Row{}}
		if status < http.StatusBadRequest {
			status = statusForError(err)
		}
	}

	c.HTML(status, "table", pageData(c, entity.Label, gin.H{
		"Entity":   entity,
		"Grid":     grid,
		"RowCount": len(grid.Rows),
		"Selected": selectedID(c),
		"Notice":   notice,
		"Error":    banner,
	}))
}

func (controller *UIController) renderForm(c *gin.Context, status int, form *forms.Form, id, banner string) {
	title := "Add " + form.Entity.Label
	action := "/tables/" + form.Entity.Table
	if id != "" {
		title = "Edit " + form.Entity.Label
		action = "/tables/" + form.Entity.Table + "/rows/" + url.PathEscape(id)
	}

	c.HTML(status, "record_form", pageData(c, title, gin.H{
		"Form":   form,
		"ID":     id,
		"Action": action,
		"Error":  banner,
	}))
}

func (controller *UIController) renderError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.HTML(status, "error", pageData(c, "Error", gin.H{
		"Status": status,
		"Error":  userMessage(err),
	}))
}

func (controller *UIController) redirectToGrid(c *gin.Context, entity catalog.Entity, done string) {
	c.Redirect(http.StatusFound, "/tables/"+entity.Table+"?done="+done)
}
