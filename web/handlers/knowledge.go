package handlers

import (
	"net/http"
	"strconv"

	apperrors "campus-agent/errors"
	"campus-agent/knowledge"
	"campus-agent/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type KnowledgeHandler struct {
	service *knowledge.Service
	logger  *zap.Logger
}

func NewKnowledgeHandler(service *knowledge.Service, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{service: service, logger: logger}
}

type searchResult struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category string  `json:"category"`
	Priority int     `json:"priority"`
	Score    float64 `json:"score"`
	Scope    string  `json:"scope"`
}

// Search runs the ranked knowledge search for a university. Scores are raw
// ranking values and may exceed 1.0 for department-scoped hits.
func (h *KnowledgeHandler) Search(c *gin.Context) {
	universityID, _ := strconv.ParseInt(c.Query("university_id"), 10, 64)

	var departmentID *int64
	if v, err := strconv.ParseInt(c.Query("department_id"), 10, 64); err == nil {
		departmentID = &v
	}

	limit := knowledge.DefaultSearchLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}

	results, err := h.service.Search(c.Request.Context(), c.Query("q"), universityID, departmentID, limit)
	if err != nil {
		h.logger.Error("Knowledge search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		out = append(out, searchResult{
			ID:       r.Entry.ID,
			Title:    r.Entry.Title,
			Content:  r.Entry.Content,
			Category: r.Entry.Category,
			Priority: r.Entry.Priority,
			Score:    r.Score,
			Scope:    r.Scope,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h *KnowledgeHandler) Categories(c *gin.Context) {
	universityID, _ := strconv.ParseInt(c.Query("university_id"), 10, 64)
	categories, err := h.service.Categories(c.Request.Context(), universityID)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *KnowledgeHandler) ByCategory(c *gin.Context) {
	universityID, _ := strconv.ParseInt(c.Query("university_id"), 10, 64)
	entries, err := h.service.ByCategory(c.Request.Context(), universityID, c.Param("name"))
	if err != nil {
		h.logger.Error("Failed to list entries by category", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": toEntryViews(entries)})
}

// TenantSummary returns the university context blurb; an unknown university
// yields an empty summary, not an error.
func (h *KnowledgeHandler) TenantSummary(c *gin.Context) {
	universityID, _ := strconv.ParseInt(c.Query("university_id"), 10, 64)
	summary := ""
	if universityID != 0 {
		summary = h.service.TenantSummary(c.Request.Context(), universityID)
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

type createEntryRequest struct {
	UniversityID int64  `json:"university_id" binding:"required"`
	DepartmentID *int64 `json:"department_id"`
	Title        string `json:"title" binding:"required"`
	Content      string `json:"content" binding:"required"`
	ContentAr    string `json:"content_ar"`
	Category     string `json:"category"`
	Tags         string `json:"tags"`
	SourceURL    string `json:"source_url"`
	Priority     int    `json:"priority"`
}

func (h *KnowledgeHandler) Create(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.ActorFrom(c)
	if !actor.CanManageTenant(req.UniversityID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role for this university"})
		return
	}

	entry := knowledge.Entry{
		UniversityID: req.UniversityID,
		DepartmentID: req.DepartmentID,
		Title:        req.Title,
		Content:      req.Content,
		ContentAr:    req.ContentAr,
		Category:     req.Category,
		Tags:         req.Tags,
		SourceURL:    req.SourceURL,
		Priority:     req.Priority,
	}
	if actor.UserID != 0 {
		entry.CreatedBy = &actor.UserID
	}

	created, err := h.service.CreateEntry(c.Request.Context(), entry)
	if err != nil {
		h.writeError(c, err, "failed to create knowledge entry")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": toEntryView(created)})
}

// updateEntryRequest enumerates exactly the mutable fields of an entry.
// Anything else in the payload is ignored by binding and cannot be patched.
type updateEntryRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	ContentAr *string `json:"content_ar"`
	Category  *string `json:"category"`
	Tags      *string `json:"tags"`
	SourceURL *string `json:"source_url"`
	Priority  *int    `json:"priority"`
	IsActive  *bool   `json:"is_active"`
}

func (h *KnowledgeHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.service.Entry(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to load knowledge entry")
		return
	}
	actor := middleware.ActorFrom(c)
	if !actor.CanManageTenant(existing.UniversityID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role for this university"})
		return
	}

	updated, err := h.service.UpdateEntry(c.Request.Context(), id, knowledge.EntryUpdate{
		Title:     req.Title,
		Content:   req.Content,
		ContentAr: req.ContentAr,
		Category:  req.Category,
		Tags:      req.Tags,
		SourceURL: req.SourceURL,
		Priority:  req.Priority,
		IsActive:  req.IsActive,
	})
	if err != nil {
		h.writeError(c, err, "failed to update knowledge entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": toEntryView(updated)})
}

func (h *KnowledgeHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	existing, err := h.service.Entry(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to load knowledge entry")
		return
	}
	actor := middleware.ActorFrom(c)
	if !actor.CanManageTenant(existing.UniversityID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role for this university"})
		return
	}

	if err := h.service.DeleteEntry(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "failed to delete knowledge entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "knowledge entry deleted"})
}

func (h *KnowledgeHandler) writeError(c *gin.Context, err error, message string) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "knowledge entry not found"})
	case apperrors.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

type entryView struct {
	ID           int64    `json:"id"`
	UniversityID int64    `json:"university_id"`
	DepartmentID *int64   `json:"department_id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	ContentAr    string   `json:"content_ar,omitempty"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	SourceURL    string   `json:"source_url,omitempty"`
	Priority     int      `json:"priority"`
	IsActive     bool     `json:"is_active"`
}

func toEntryView(e knowledge.Entry) entryView {
	return entryView{
		ID:           e.ID,
		UniversityID: e.UniversityID,
		DepartmentID: e.DepartmentID,
		Title:        e.Title,
		Content:      e.Content,
		ContentAr:    e.ContentAr,
		Category:     e.Category,
		Tags:         knowledge.SplitTags(e.Tags),
		SourceURL:    e.SourceURL,
		Priority:     e.Priority,
		IsActive:     e.IsActive,
	}
}

func toEntryViews(entries []knowledge.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryView(e))
	}
	return out
}
