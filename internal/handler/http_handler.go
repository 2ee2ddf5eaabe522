package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
	"github.com/shivamgupta214/outfox-health-assessment/internal/service"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/log"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/response"
)

const (
	routeUploadHospitalData   = "/upload-hospital-data"
	routeUploadHospitalRating = "/upload-hospital-rating"
	routeProviders            = "/providers"
	routeHealth               = "/health"

	detailNotCSV = "File must be a CSV file"
)

// Handler handles HTTP requests for the navigator API.
type Handler struct {
	navigatorService service.NavigatorService
}

// NewHandler creates a new HTTP handler.
func NewHandler(navigatorService service.NavigatorService) *Handler {
	return &Handler{
		navigatorService: navigatorService,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST(routeUploadHospitalData, h.UploadHospitalData)
	r.POST(routeUploadHospitalRating, h.UploadHospitalRating)
	r.GET(routeProviders, h.SearchProviders)
	r.GET(routeHealth, h.Health)
}

// UploadHospitalData imports an inpatient charges CSV.
func (h *Handler) UploadHospitalData(c *gin.Context) {
	h.upload(c, "Data inserted successfully", h.navigatorService.ImportHospitalData)
}

// UploadHospitalRating imports a hospital ratings CSV.
func (h *Handler) UploadHospitalRating(c *gin.Context) {
	h.upload(c, "Ratings inserted successfully", h.navigatorService.ImportRatings)
}

func (h *Handler) upload(c *gin.Context, done string, importFn func(context.Context, io.Reader) (int, error)) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	header, err := c.FormFile("file")
	if err != nil {
		l.Warn().Err(err).Msg("upload without file")
		response.BadRequest(c, "No file uploaded")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		response.BadRequest(c, detailNotCSV)
		return
	}

	file, err := header.Open()
	if err != nil {
		l.Error().Err(err).Str(log.FieldFile, header.Filename).Msg("failed to open upload")
		response.InternalError(c, err.Error())
		return
	}
	defer file.Close()

	rows, err := importFn(ctx, file)
	if err != nil {
		l.Error().Err(err).Str(log.FieldFile, header.Filename).Msg("import failed")
		if errors.Is(err, service.ErrMissingColumn) {
			response.BadRequest(c, err.Error())
			return
		}
		_ = c.Error(err)
		response.InternalError(c, err.Error())
		return
	}

	l.Info().Str(log.FieldFile, header.Filename).Int(log.FieldRows, rows).Msg("upload imported")
	response.Message(c, done, rows)
}

// SearchProviders handles GET /providers.
func (h *Handler) SearchProviders(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var q domain.ProviderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		l.Warn().Err(err).Msg("invalid provider query")
		response.BadRequest(c, err.Error())
		return
	}

	providers, err := h.navigatorService.SearchProviders(ctx, q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuery) {
			response.BadRequest(c, err.Error())
			return
		}
		l.Error().Err(err).Str(log.FieldMSDRG, q.MSDRG).Msg("provider search failed")
		_ = c.Error(err)
		response.InternalError(c, err.Error())
		return
	}

	response.List(c, providers)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
