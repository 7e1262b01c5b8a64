package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/entity"
	"github.com/mgallardo/freightdeck/internal/logging"
	"github.com/mgallardo/freightdeck/internal/server/service"
)

type handler struct {
	svc *service.Service
	log logging.Logger
}

func (h *handler) version(c *gin.Context) {
	v, err := h.svc.Version(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": v})
}

func (h *handler) snapshot(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handler) types(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"types": h.svc.Types(c.Request.Context())})
}

func (h *handler) listByType(c *gin.Context) {
	items, err := h.svc.ListByType(c.Request.Context(), entity.Type(c.Param("type")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// create accepts a flat body: the type discriminator plus the new entity's
// attributes, e.g. {"type": "VESSEL", "name": "Atlas", "code": "AT"}.
func (h *handler) create(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rawType, _ := body["type"].(string)
	created, err := h.svc.Create(c.Request.Context(), entity.Type(rawType), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Created successfully", "item": created})
}

func (h *handler) update(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), entity.ID(c.Param("id")), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated successfully", "item": updated})
}

func (h *handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), entity.ID(c.Param("id"))); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// writeError maps domain failures onto the wire envelope. Validation errors
// carry the full message list; everything else collapses to one message.
func (h *handler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Messages})
		return
	}
	if errors.Is(err, common.ErrorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	h.log.Error(c.Request.Context(), "request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
