package handler

import (
	"net/http"

	"repairpos/internal/dto"
	"repairpos/internal/service"

	"github.com/gin-gonic/gin"
)

// ServiceJobsHandler exposes one endpoint per lifecycle operation plus the
// part usage endpoints of a job.
type ServiceJobsHandler struct {
	jobs  service.ServiceJobService
	parts service.PartUsageService
}

func NewServiceJobsHandler(jobs service.ServiceJobService, parts service.PartUsageService) *ServiceJobsHandler {
	return &ServiceJobsHandler{jobs: jobs, parts: parts}
}

// Open godoc
// @Summary      Open a repair ticket
// @Tags         service-jobs
// @Accept       json
// @Produce      json
// @Param        body body dto.OpenJobRequest true "Ticket"
// @Success      201  {object} dto.ServiceJobResponse
// @Failure      404  {object} apierror.APIError "unknown customer"
// @Router       /v1/service-jobs [post]
func (h *ServiceJobsHandler) Open(c *gin.Context) {
	var req dto.OpenJobRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.jobs.Open(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ServiceJobsHandler) List(c *gin.Context) {
	var filter dto.ServiceJobFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.jobs.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiceJobsHandler) Stats(c *gin.Context) {
	resp, err := h.jobs.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiceJobsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Updates returns the job timeline; ?order=desc lists the newest first.
func (h *ServiceJobsHandler) Updates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.jobs.ListUpdates(c.Request.Context(), id, c.Query("order") == "desc")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reschedule godoc
// @Summary      Reschedule a repair
// @Description  Moves the job to in_progress with a new due date (business-local civil time) and records why.
// @Tags         service-jobs
// @Accept       json
// @Produce      json
// @Param        id   path string                   true "Service job UUID"
// @Param        body body dto.RescheduleJobRequest true "New schedule"
// @Success      200  {object} dto.ServiceJobResponse
// @Failure      409  {object} apierror.APIError "job already closed"
// @Router       /v1/service-jobs/{id}/reschedule [post]
func (h *ServiceJobsHandler) Reschedule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.RescheduleJobRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.jobs.Reschedule(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiceJobsHandler) AddNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AddNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.jobs.AddNote(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Complete godoc
// @Summary      Complete a repair
// @Tags         service-jobs
// @Accept       json
// @Produce      json
// @Param        id   path string                 true "Service job UUID"
// @Param        body body dto.CompleteJobRequest true "Closing summary and technicians"
// @Success      200  {object} dto.ServiceJobResponse
// @Failure      409  {object} apierror.APIError "already completed or cancelled"
// @Router       /v1/service-jobs/{id}/complete [post]
func (h *ServiceJobsHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CompleteJobRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.jobs.Complete(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiceJobsHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelJobRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.jobs.Cancel(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddPart godoc
// @Summary      Use a part on a repair
// @Description  Reserves stock and snapshots the current price in one unit.
// @Tags         service-jobs
// @Accept       json
// @Produce      json
// @Param        id   path string             true "Service job UUID"
// @Param        body body dto.AddPartRequest true "Part"
// @Success      201  {object} dto.ServiceJobPartResponse
// @Failure      409  {object} apierror.APIError "insufficient stock or job closed"
// @Router       /v1/service-jobs/{id}/parts [post]
func (h *ServiceJobsHandler) AddPart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AddPartRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.parts.AddPart(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RemovePart returns the part's quantity to stock and deletes the row.
func (h *ServiceJobsHandler) RemovePart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.parts.RemovePart(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
