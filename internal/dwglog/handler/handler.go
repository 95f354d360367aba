package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kcarlton55/dwglog2/internal/dwglog/service"
	"github.com/kcarlton55/dwglog2/internal/dwglog/sse"
)

// Handlers is the handler set for the drawing log API.
type Handlers struct {
	Record *RecordHandler
	Edit   *EditHandler
	SSE    *SSEHandler
}

func NewHandlers(logSvc *service.LogService, editSvc *service.EditService, hub *sse.Hub) *Handlers {
	return &Handlers{
		Record: NewRecordHandler(logSvc),
		Edit:   NewEditHandler(editSvc),
		SSE:    NewSSEHandler(hub),
	}
}

// RegisterRoutes mounts the API under the given group.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/records", h.Record.List)
	api.GET("/records/search", h.Record.Search)
	api.POST("/records", h.Record.Create)
	api.POST("/records/:dwg/edits/preview", h.Edit.Preview)
	api.POST("/records/:dwg/edits", h.Edit.Apply)
	api.GET("/events", h.SSE.Stream)
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope; the HTTP status is code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}
