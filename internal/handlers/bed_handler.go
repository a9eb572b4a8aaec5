package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/services"
)

type BedHandler struct {
	bedService *services.BedService
}

func NewBedHandler(bedService *services.BedService) *BedHandler {
	return &BedHandler{bedService: bedService}
}

// @Summary Bed Stats
// @Description Counts of beds per status and the occupancy rate
// @Tags Beds
// @Produce json
// @Success 200 {object} models.BedStats
// @Security BearerAuth
// @Router /beds/stats [get]
func (h *BedHandler) Stats(c *gin.Context) {
	stats, err := h.bedService.GetBedStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary List Dormitories
// @Tags Beds
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /dormitories [get]
func (h *BedHandler) Dormitories(c *gin.Context) {
	dorms, err := h.bedService.ListDormitories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dormitories": dorms})
}

// @Summary Create Dormitory
// @Tags Beds
// @Accept json
// @Produce json
// @Param request body services.CreateDormitoryInput true "Dormitory"
// @Success 201 {object} models.Dormitory
// @Security BearerAuth
// @Router /dormitories [post]
func (h *BedHandler) CreateDormitory(c *gin.Context) {
	var input services.CreateDormitoryInput
	if err := BindNestedOrFlat(c, "dormitory", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dorm, err := h.bedService.CreateDormitory(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dorm)
}

// @Summary Delete Dormitory
// @Description Deletes an empty dormitory
// @Tags Beds
// @Param dormitory_id path string true "Dormitory ID"
// @Success 204
// @Security BearerAuth
// @Router /dormitories/{dormitory_id} [delete]
func (h *BedHandler) DeleteDormitory(c *gin.Context) {
	id, ok := uuidParam(c, "dormitory_id")
	if !ok {
		return
	}
	if err := h.bedService.DeleteDormitory(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List Beds
// @Tags Beds
// @Produce json
// @Param dormitory_id query string false "Dormitory ID"
// @Param status query string false "available, occupied, maintenance or needs_cleaning"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /beds [get]
func (h *BedHandler) Index(c *gin.Context) {
	var dormitoryID *uuid.UUID
	if raw := c.Query("dormitory_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dormitory_id"})
			return
		}
		dormitoryID = &id
	}

	beds, err := h.bedService.ListBeds(c.Request.Context(), dormitoryID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"beds": beds})
}

// @Summary Create Bed
// @Tags Beds
// @Accept json
// @Produce json
// @Param request body services.CreateBedInput true "Bed"
// @Success 201 {object} models.Bed
// @Security BearerAuth
// @Router /beds [post]
func (h *BedHandler) Create(c *gin.Context) {
	var input services.CreateBedInput
	if err := BindNestedOrFlat(c, "bed", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bed, err := h.bedService.CreateBed(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bed)
}

// @Summary Update Bed
// @Tags Beds
// @Accept json
// @Produce json
// @Param bed_id path string true "Bed ID"
// @Param request body services.UpdateBedInput true "Bed"
// @Success 200 {object} models.Bed
// @Security BearerAuth
// @Router /beds/{bed_id} [put]
func (h *BedHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "bed_id")
	if !ok {
		return
	}

	var input services.UpdateBedInput
	if err := BindNestedOrFlat(c, "bed", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bed, err := h.bedService.UpdateBed(c.Request.Context(), id, input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// @Summary Delete Bed
// @Description Deletes a bed that is not occupied
// @Tags Beds
// @Param bed_id path string true "Bed ID"
// @Success 204
// @Security BearerAuth
// @Router /beds/{bed_id} [delete]
func (h *BedHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "bed_id")
	if !ok {
		return
	}
	if err := h.bedService.DeleteBed(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type BedStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Set Bed Status
// @Tags Beds
// @Accept json
// @Produce json
// @Param bed_id path string true "Bed ID"
// @Param request body BedStatusRequest true "Status"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /beds/{bed_id}/status [put]
func (h *BedHandler) SetStatus(c *gin.Context) {
	id, ok := uuidParam(c, "bed_id")
	if !ok {
		return
	}

	var req BedStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if err := h.bedService.SetStatus(c.Request.Context(), id, req.Status, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// @Summary Mark Bed Cleaned
// @Description Moves a bed from needs_cleaning back to available
// @Tags Beds
// @Param bed_id path string true "Bed ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /beds/{bed_id}/clean [post]
func (h *BedHandler) Clean(c *gin.Context) {
	id, ok := uuidParam(c, "bed_id")
	if !ok {
		return
	}
	if err := h.bedService.MarkCleaned(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "available"})
}
