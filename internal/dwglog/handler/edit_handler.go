package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kcarlton55/dwglog2/internal/dwglog/entity"
	"github.com/kcarlton55/dwglog2/internal/dwglog/service"
	"gorm.io/gorm"
)

// EditHandler exposes the two-phase cell-edit flow: preview returns the
// validator's decision (the confirmation prompt of the old desktop
// dialog); a confirmed apply re-classifies and commits.
type EditHandler struct {
	editSvc *service.EditService
}

func NewEditHandler(editSvc *service.EditService) *EditHandler {
	return &EditHandler{editSvc: editSvc}
}

type editRequest struct {
	Column  *int   `json:"column" binding:"required"`
	Value   string `json:"value"`
	Confirm bool   `json:"confirm"`
}

type editResponse struct {
	*service.Decision
	Applied bool `json:"applied"`
}

// Preview classifies the edit without writing anything.
func (h *EditHandler) Preview(c *gin.Context) {
	dwg, column, body, ok := h.bind(c)
	if !ok {
		return
	}
	dec, err := h.editSvc.ClassifyEdit(c.Request.Context(), dwg, column, body.Value)
	if err != nil {
		h.storeError(c, err)
		return
	}
	Success(c, editResponse{Decision: dec, Applied: false})
}

// Apply commits a confirmed edit.  Rejections and unconfirmed requests
// come back with applied=false and the decision's prompt.
func (h *EditHandler) Apply(c *gin.Context) {
	dwg, column, body, ok := h.bind(c)
	if !ok {
		return
	}
	if !body.Confirm {
		dec, err := h.editSvc.ClassifyEdit(c.Request.Context(), dwg, column, body.Value)
		if err != nil {
			h.storeError(c, err)
			return
		}
		Success(c, editResponse{Decision: dec, Applied: false})
		return
	}
	dec, err := h.editSvc.Apply(c.Request.Context(), dwg, column, body.Value)
	if err != nil {
		h.storeError(c, err)
		return
	}
	Success(c, editResponse{Decision: dec, Applied: !dec.Rejected()})
}

func (h *EditHandler) bind(c *gin.Context) (string, entity.Column, editRequest, bool) {
	dwg := c.Param("dwg")
	var body editRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, 40002, "invalid request body: "+err.Error())
		return "", 0, body, false
	}
	column := entity.Column(*body.Column)
	if !column.Valid() {
		Error(c, 40003, "column must be between 0 and 4")
		return "", 0, body, false
	}
	return dwg, column, body, true
}

func (h *EditHandler) storeError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		Error(c, 40402, "record not found")
		return
	}
	Error(c, 50004, "store error: field not updated")
}
