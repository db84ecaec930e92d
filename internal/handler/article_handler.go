package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"editorial-pipeline/internal/domain"
	"editorial-pipeline/internal/logger"
	"editorial-pipeline/internal/service"
)

const (
	headerActorID     = "X-Actor-ID"
	headerActorRole   = "X-Actor-Role"
	headerActorRubric = "X-Actor-Rubric"

	coverFormField = "cover"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ArticleHandler exposes the article lifecycle over HTTP. Identity arrives
// in headers set by the authenticating proxy; the handler only parses it and
// hands the actor to the service.
type ArticleHandler struct {
	service service.ArticleServiceInterface
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(svc service.ArticleServiceInterface) *ArticleHandler {
	return &ArticleHandler{service: svc}
}

// actorFrom extracts the acting identity from request headers. A request
// without an identity is unauthenticated.
func actorFrom(c *gin.Context) (domain.Actor, bool) {
	actor := domain.Actor{
		ID:     c.GetHeader(headerActorID),
		Role:   domain.Role(c.GetHeader(headerActorRole)),
		Rubric: c.GetHeader(headerActorRubric),
	}
	if actor.ID == "" || actor.Role == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor identity"})
		return domain.Actor{}, false
	}
	return actor, true
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "article not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflicting concurrent update"})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrStorage):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "blob storage unavailable"})
	default:
		logger.ErrorContext(c.Request.Context(), "Request failed", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
}

// Create handles POST /api/v1/articles.
func (h *ArticleHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var in service.CreateArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	article, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, article)
}

// Get handles GET /api/v1/articles/:id.
func (h *ArticleHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	article, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// ListResponse wraps a listing window.
type ListResponse struct {
	Articles []domain.Article `json:"articles"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// List handles GET /api/v1/articles.
func (h *ArticleHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var page service.Page
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid paging parameters"})
		return
	}

	articles, err := h.service.List(c.Request.Context(), actor, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Articles: articles,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
}

// Update handles PATCH /api/v1/articles/:id.
func (h *ArticleHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var in service.UpdateArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	article, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /api/v1/articles/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// transitionRequest carries the optional note and reviewer annotations some
// lifecycle endpoints accept.
type transitionRequest struct {
	Note        string                   `json:"note"`
	Annotations *domain.AnnotationUpdate `json:"annotations,omitempty"`
}

// Submit handles POST /api/v1/articles/:id/submit.
func (h *ArticleHandler) Submit(c *gin.Context) {
	h.lifecycle(c, func(actor domain.Actor, id string) (*domain.Article, error) {
		return h.service.Submit(c.Request.Context(), actor, id)
	})
}

// StartEditorReview handles POST /api/v1/articles/:id/review.
func (h *ArticleHandler) StartEditorReview(c *gin.Context) {
	h.lifecycle(c, func(actor domain.Actor, id string) (*domain.Article, error) {
		return h.service.StartEditorReview(c.Request.Context(), actor, id)
	})
}

// RequestRevision handles POST /api/v1/articles/:id/revision.
func (h *ArticleHandler) RequestRevision(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	article, err := h.service.RequestRevision(c.Request.Context(), actor, c.Param("id"), req.Note, req.Annotations)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Approve handles POST /api/v1/articles/:id/approve.
func (h *ArticleHandler) Approve(c *gin.Context) {
	h.lifecycle(c, func(actor domain.Actor, id string) (*domain.Article, error) {
		return h.service.Approve(c.Request.Context(), actor, id)
	})
}

// StartAdminReview handles POST /api/v1/articles/:id/admin-review.
func (h *ArticleHandler) StartAdminReview(c *gin.Context) {
	h.lifecycle(c, func(actor domain.Actor, id string) (*domain.Article, error) {
		return h.service.StartAdminReview(c.Request.Context(), actor, id)
	})
}

// Reject handles POST /api/v1/articles/:id/reject.
func (h *ArticleHandler) Reject(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	article, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Publish handles POST /api/v1/articles/:id/publish.
func (h *ArticleHandler) Publish(c *gin.Context) {
	h.lifecycle(c, func(actor domain.Actor, id string) (*domain.Article, error) {
		return h.service.Publish(c.Request.Context(), actor, id)
	})
}

// UpdateHighlights handles POST /api/v1/articles/:id/highlights.
func (h *ArticleHandler) UpdateHighlights(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var ann domain.AnnotationUpdate
	if err := c.ShouldBindJSON(&ann); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	article, err := h.service.UpdateHighlights(c.Request.Context(), actor, c.Param("id"), ann)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// ChangeCover handles POST /api/v1/articles/:id/cover with a multipart
// cover file.
func (h *ArticleHandler) ChangeCover(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(coverFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing cover file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable cover file"})
		return
	}
	defer file.Close()

	article, err := h.service.ChangeCover(c.Request.Context(), actor, c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// History handles GET /api/v1/articles/:id/history.
func (h *ArticleHandler) History(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	entries, err := h.service.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// lifecycle is the shared shape of body-less transition endpoints.
func (h *ArticleHandler) lifecycle(c *gin.Context, call func(domain.Actor, string) (*domain.Article, error)) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	article, err := call(actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}
