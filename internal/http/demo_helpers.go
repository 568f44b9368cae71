package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/demo"
)

// DemoTemplateData holds demo mode info for templates.
type DemoTemplateData struct {
	Enabled bool // Whether demo mode is active
	Message string
}

// GetDemoTemplateData retrieves demo mode data from context for use in templates.
func GetDemoTemplateData(c *gin.Context) DemoTemplateData {
	if !demo.IsDemo(c) {
		return DemoTemplateData{}
	}
	return DemoTemplateData{Enabled: true, Message: demo.BlockedMessage}
}

// pageData merges the layout data every page needs into data.
func pageData(c *gin.Context, title string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Auth"] = GetAuthTemplateData(c)
	data["Demo"] = GetDemoTemplateData(c)
	return data
}
