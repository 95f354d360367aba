package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kcarlton55/dwglog2/internal/dwglog/service"
	"gorm.io/gorm"
)

// RecordHandler serves the table view and the insertion flow.
type RecordHandler struct {
	logSvc *service.LogService
}

func NewRecordHandler(logSvc *service.LogService) *RecordHandler {
	return &RecordHandler{logSvc: logSvc}
}

// List returns the newest page of the log, most recent first.
func (h *RecordHandler) List(c *gin.Context) {
	recs, err := h.logSvc.ListRecent(c.Request.Context())
	if err != nil {
		Error(c, 50001, "could not read the drawing log")
		return
	}
	Success(c, recs)
}

// Search runs a GLOB query, e.g. ?q=BASEPLATE*;kcarlton or ?q=09* or 11/*/2020.
func (h *RecordHandler) Search(c *gin.Context) {
	term := c.Query("q")
	recs, err := h.logSvc.Search(c.Request.Context(), term)
	if err != nil {
		Error(c, 50002, "could not find text searched for")
		return
	}
	Success(c, recs)
}

// Create inserts a new record with the next drawing number.  The author
// defaults to the authenticated user's name.
func (h *RecordHandler) Create(c *gin.Context) {
	var input service.CreateRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		Error(c, 40001, "invalid request body: "+err.Error())
		return
	}
	if input.Author == "" {
		input.Author = c.GetString("user_name")
	}
	rec, err := h.logSvc.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Error(c, 40401, "record not found")
			return
		}
		Error(c, 50003, "could not add pt no. to the database")
		return
	}
	Created(c, rec)
}
