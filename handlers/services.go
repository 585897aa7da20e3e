package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"taskhive/models"
	"taskhive/services/catalog"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceHandler serves the catalogue.
type ServiceHandler struct {
	Svc catalog.CatalogService
}

func NewServiceHandler(svc catalog.CatalogService) *ServiceHandler {
	return &ServiceHandler{Svc: svc}
}

func (h *ServiceHandler) ListServicesHandler(c *gin.Context) {
	var filter models.ServiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondError(c, utils.Validation("invalid query parameters", map[string]any{"query": err.Error()}))
		return
	}
	services, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) GetServiceHandler(c *gin.Context) {
	svc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateServiceHandler accepts either a JSON body or a multipart form with the
// service JSON in "data" and up to five "images" files.
func (h *ServiceHandler) CreateServiceHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var input models.ServiceInput
	images, cleanup, ok := readServicePayload(c, &input)
	if !ok {
		return
	}
	defer cleanup()

	svc, err := h.Svc.Create(c.Request.Context(), actor, input, images)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("service created", zap.String("serviceId", svc.ID))
	c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) UpdateServiceHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var input models.ServiceUpdate
	images, cleanup, ok := readServicePayload(c, &input)
	if !ok {
		return
	}
	defer cleanup()

	svc, err := h.Svc.Update(c.Request.Context(), actor, c.Param("id"), input, images)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) DeleteServiceHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

// readServicePayload decodes dst and opens any uploaded images. cleanup
// closes the opened files.
func readServicePayload(c *gin.Context, dst any) ([]io.Reader, func(), bool) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, bindJSON(c, dst)
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.RespondError(c, utils.Validation("invalid multipart form", map[string]any{"form": err.Error()}))
		return nil, noop, false
	}
	if data := form.Value["data"]; len(data) > 0 {
		if err := json.Unmarshal([]byte(data[0]), dst); err != nil {
			utils.RespondError(c, utils.Validation("invalid service data", map[string]any{"data": err.Error()}))
			return nil, noop, false
		}
	}

	files := form.File["images"]
	if len(files) > catalog.MaxImages {
		utils.RespondError(c, utils.Validation("too many images", map[string]any{"images": "at most 5 files"}))
		return nil, noop, false
	}
	var closers []io.Closer
	cleanup := func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}
	readers := make([]io.Reader, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			utils.RespondError(c, utils.Validation("unreadable image", map[string]any{"file": fh.Filename}))
			return nil, noop, false
		}
		closers = append(closers, f)
		readers = append(readers, f)
	}
	return readers, cleanup, true
}
