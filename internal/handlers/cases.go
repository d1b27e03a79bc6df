package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dentix/api/internal/ids"
	"dentix/api/internal/models"
	"dentix/api/internal/repository"
)

const maxCaseImageSize = 10 << 20 // 10 MiB

type caseRequest struct {
	CaseName    string `json:"caseName" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=1000"`
	ImageURL    string `json:"imageUrl" binding:"required"`
}

type caseResponse struct {
	ID          string    `json:"id"`
	CaseName    string    `json:"caseName"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCaseResponse(dentalCase models.DentalCase) caseResponse {
	return caseResponse{
		ID:          dentalCase.ID,
		CaseName:    dentalCase.CaseName,
		Description: dentalCase.Description,
		ImageURL:    dentalCase.ImageURL,
		CreatedAt:   dentalCase.CreatedAt,
		UpdatedAt:   dentalCase.UpdatedAt,
	}
}

func (h HandlerSet) CreateCase(c *gin.Context) {
	var req caseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dentalCase := models.DentalCase{
		ID:          ids.New(),
		CaseName:    req.CaseName,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if err := h.cases.Create(c.Request.Context(), dentalCase); err != nil {
		h.log.Error().Err(err).Msg("create case failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	h.log.Info().Str("case_id", dentalCase.ID).Msg("dental case created")
	c.JSON(http.StatusOK, gin.H{
		"message": "dental case created",
		"case":    toCaseResponse(dentalCase),
	})
}

func (h HandlerSet) ListCases(c *gin.Context) {
	cases, err := h.cases.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list cases failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]caseResponse, 0, len(cases))
	for _, dentalCase := range cases {
		resp = append(resp, toCaseResponse(dentalCase))
	}
	c.JSON(http.StatusOK, gin.H{"cases": resp})
}

func (h HandlerSet) GetCase(c *gin.Context) {
	dentalCase, err := h.cases.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "case_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get case failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}

	c.JSON(http.StatusOK, toCaseResponse(dentalCase))
}

func (h HandlerSet) UpdateCase(c *gin.Context) {
	var req caseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dentalCase := models.DentalCase{
		ID:          c.Param("id"),
		CaseName:    req.CaseName,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if err := h.cases.Update(c.Request.Context(), dentalCase); err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "case_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("update case failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dental case updated"})
}

func (h HandlerSet) DeleteCase(c *gin.Context) {
	if err := h.cases.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "case_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("delete case failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dental case deleted"})
}

// UploadCaseImage stores an image in the object store and returns the URL to
// reference from a case record.
func (h HandlerSet) UploadCaseImage(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage_unavailable"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	if fileHeader.Size > maxCaseImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer file.Close()

	url, err := h.store.PutCaseImage(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		h.log.Error().Err(err).Msg("upload case image failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}
