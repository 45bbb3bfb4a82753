package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rohits-web03/formstore/internal/models"
	"github.com/rohits-web03/formstore/internal/repositories"
	"github.com/rohits-web03/formstore/internal/utils"
	"go.uber.org/zap"
)

type InstanceHandler struct {
	instances *repositories.InstanceRepository
	validate  *validator.Validate
	now       func() time.Time
	log       *zap.Logger
}

func NewInstanceHandler(instances *repositories.InstanceRepository, now func() time.Time, log *zap.Logger) *InstanceHandler {
	if now == nil {
		now = time.Now
	}
	return &InstanceHandler{
		instances: instances,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       now,
		log:       log,
	}
}

// POST /api/v1/instances
// CreateInstance godoc
// @Summary Record a filled-in submission
// @Description Instances keep their form version alive: a form with live instances is soft-deleted instead of removed.
// @Tags Instances
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.Instance true "Instance"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/instances [post]
func (h *InstanceHandler) CreateInstance(w http.ResponseWriter, r *http.Request) {
	var instance models.Instance
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&instance); err != nil {
		badRequest(w, "Invalid instance payload")
		return
	}
	instance.ID = 0
	if instance.InstanceID == "" {
		instance.InstanceID = utils.NewInstanceID()
	}
	if instance.Status == "" {
		instance.Status = models.StatusIncomplete
	}
	if instance.LastStatusChangeDate == 0 {
		instance.LastStatusChangeDate = h.now().UnixMilli()
	}
	if err := h.validate.Struct(instance); err != nil {
		badRequest(w, "Invalid instance: "+err.Error())
		return
	}

	saved, err := h.instances.Save(r.Context(), &instance)
	if err != nil {
		h.log.Error("failed to save instance", zap.String("formId", instance.FormID), zap.Error(err))
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to save instance")
		return
	}
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Instance created successfully",
		Data:    saved,
	})
}

// GET /api/v1/instances
// ListInstances godoc
// @Summary List instances of a form
// @Tags Instances
// @Security BearerAuth
// @Produce json
// @Param formId query string true "Logical form id"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/instances [get]
func (h *InstanceHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	formID := r.URL.Query().Get("formId")
	if formID == "" {
		badRequest(w, "formId is required")
		return
	}
	instances, err := h.instances.FindByFormID(r.Context(), formID)
	if err != nil {
		h.log.Error("failed to list instances", zap.String("formId", formID), zap.Error(err))
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to list instances")
		return
	}
	if instances == nil {
		instances = []models.Instance{}
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Instances retrieved successfully",
		Data:    instances,
	})
}

// GET /api/v1/instances/{id}
// GetInstance godoc
// @Summary Get one instance
// @Tags Instances
// @Security BearerAuth
// @Produce json
// @Param id path int true "Instance row id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/instances/{id} [get]
func (h *InstanceHandler) GetInstance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		badRequest(w, "Invalid instance id")
		return
	}
	instance, err := h.instances.Get(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.ErrorResponse(w, http.StatusNotFound, "Instance not found")
		return
	}
	if err != nil {
		h.log.Error("failed to load instance", zap.Int64("id", id), zap.Error(err))
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to load instance")
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Instance retrieved successfully",
		Data:    instance,
	})
}
