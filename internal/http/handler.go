package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"checkpoint-service/internal/model"
	"checkpoint-service/internal/repository"
	"checkpoint-service/internal/scanfile"
	"checkpoint-service/internal/service"
)

type Handler struct {
	ingestService    *service.IngestService
	analyticsService *service.AnalyticsService
	trackingService  *service.TrackingService
	log              zerolog.Logger
}

func NewHandler(
	ingestService *service.IngestService,
	analyticsService *service.AnalyticsService,
	trackingService *service.TrackingService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		ingestService:    ingestService,
		analyticsService: analyticsService,
		trackingService:  trackingService,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.POST("/upload", h.upload)

	analytics := r.Group("/analytics")
	{
		analytics.GET("/lanes", h.incompleteByLane)
		analytics.GET("/lanes/:lane/checkpoints", h.checkpointThroughput)
		analytics.GET("/types", h.typeDistribution)
	}

	tracking := r.Group("/tracking")
	{
		tracking.GET("/live", h.liveStatus)
	}

	r.GET("/vehicles", h.vehiclesOverview)
	r.POST("/scans", h.recordScan)

	logs := r.Group("/logs")
	{
		logs.POST("/filter", h.filterLogs)
		logs.GET("/filter-options", h.filterOptions)
	}
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.handleError(c, service.ErrNoFile)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, scanfile.ErrMalformedFile)
		return
	}
	defer file.Close()

	summary, err := h.ingestService.Ingest(c.Request.Context(), file)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) incompleteByLane(c *gin.Context) {
	rows, err := h.analyticsService.IncompleteJourneysByLane(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rows))
}

func (h *Handler) checkpointThroughput(c *gin.Context) {
	lane := strings.TrimSpace(c.Param("lane"))

	rows, err := h.analyticsService.CheckpointThroughput(c.Request.Context(), lane)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rows))
}

func (h *Handler) typeDistribution(c *gin.Context) {
	rows, err := h.analyticsService.TypeDistribution(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rows))
}

func (h *Handler) liveStatus(c *gin.Context) {
	status, err := h.trackingService.Live(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(status))
}

func (h *Handler) vehiclesOverview(c *gin.Context) {
	overview, err := h.trackingService.VehiclesOverview(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(overview))
}

func (h *Handler) recordScan(c *gin.Context) {
	var req struct {
		RFID string `json:"rfid" binding:"required"`
		CPID string `json:"cpid" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.trackingService.RecordScan(c.Request.Context(), req.RFID, req.CPID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) filterLogs(c *gin.Context) {
	var req struct {
		Unit      string `json:"unit"`
		Formation string `json:"formation"`
		Type      string `json:"type_of_veh"`
		Purpose   string `json:"purpose"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	filter := repository.LogFilter{}
	if unit := strings.TrimSpace(req.Unit); unit != "" {
		filter.Unit = &unit
	}
	if formation := strings.TrimSpace(req.Formation); formation != "" {
		filter.Formation = &formation
	}
	if vehicleType := strings.TrimSpace(req.Type); vehicleType != "" {
		vt := model.VehicleType(strings.ToUpper(vehicleType))
		filter.Type = &vt
	}
	if purpose := strings.TrimSpace(req.Purpose); purpose != "" {
		filter.Purpose = &purpose
	}

	rows, err := h.trackingService.FilterLogs(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(rows))
}

func (h *Handler) filterOptions(c *gin.Context) {
	options, err := h.trackingService.FilterOptions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(options))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var schemaErr *scanfile.SchemaError
	switch {
	case errors.Is(err, service.ErrNoFile):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusBadRequest, errorResponse(schemaErr.Error()))
	case errors.Is(err, scanfile.ErrMalformedFile):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrStoreUnavailable):
		h.log.Error().Err(err).Msg("store unavailable")
		c.JSON(http.StatusServiceUnavailable, errorResponse("store unavailable"))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
