package handlers

import (
	"net/http"
	"strconv"

	"taskhive/models"
	"taskhive/services/review"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
)

// ReviewHandler serves reviews and recommendations.
type ReviewHandler struct {
	Svc review.ReviewService
}

func NewReviewHandler(svc review.ReviewService) *ReviewHandler {
	return &ReviewHandler{Svc: svc}
}

func (h *ReviewHandler) ServiceReviewsHandler(c *gin.Context) {
	page, limit, ok := paging(c)
	if !ok {
		return
	}
	result, err := h.Svc.ListByService(c.Request.Context(), c.Param("id"), page, limit, c.Query("sort"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) ProviderReviewsHandler(c *gin.Context) {
	page, limit, ok := paging(c)
	if !ok {
		return
	}
	result, err := h.Svc.ListByProvider(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) RecommendedHandler(c *gin.Context) {
	services, err := h.Svc.Recommended(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *ReviewHandler) CreateReviewHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req models.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	rev, err := h.Svc.Create(c.Request.Context(), actor, c.Param("bookingId"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rev)
}

func (h *ReviewHandler) MarkHelpfulHandler(c *gin.Context) {
	rev, err := h.Svc.MarkHelpful(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

func (h *ReviewHandler) ModerateHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		Status models.ReviewStatus `json:"status"`
	}
	if !bindJSON(c, &body) {
		return
	}
	rev, err := h.Svc.Moderate(c.Request.Context(), actor, c.Param("id"), body.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// paging reads the optional page and limit query parameters; zero means default.
func paging(c *gin.Context) (int, int, bool) {
	var out [2]int
	for i, key := range []string{"page", "limit"} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondError(c, utils.Validation("invalid paging parameter", map[string]any{key: raw}))
			return 0, 0, false
		}
		out[i] = n
	}
	return out[0], out[1], true
}
