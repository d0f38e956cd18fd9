package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github/niyamr/legisrag/models"
	"github/niyamr/legisrag/services"
)

// AnalyzerController handles the HTTP surface of the service. It delegates
// all business logic to the indexing, retrieval and analysis services.
type AnalyzerController struct {
	indexing  *services.IndexingService
	retriever *services.Retriever
	analyzer  *services.Analyzer
}

// NewAnalyzerController injects the service dependencies.
func NewAnalyzerController(indexing *services.IndexingService, retriever *services.Retriever, analyzer *services.Analyzer) *AnalyzerController {
	return &AnalyzerController{
		indexing:  indexing,
		retriever: retriever,
		analyzer:  analyzer,
	}
}

// Health is the GET /api/health handler.
func (c *AnalyzerController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ExtractText is the POST /api/extract-text handler: fetches the named
// document, extracts its text and indexes the chunks.
func (c *AnalyzerController) ExtractText(ctx *gin.Context) {
	var req models.ExtractTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.indexing.IndexDocument(ctx.Request.Context(), req.BlobName)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Summarize is the POST /api/summarize handler.
func (c *AnalyzerController) Summarize(ctx *gin.Context) {
	var req models.AnalyzeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.analyzer.Summarize(ctx.Request.Context(), req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ExtractSections is the POST /api/extract-sections handler.
func (c *AnalyzerController) ExtractSections(ctx *gin.Context) {
	var req models.AnalyzeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.analyzer.ExtractSections(ctx.Request.Context(), req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CheckRules is the POST /api/check-rules handler. The response is always
// one result per fixed compliance rule.
func (c *AnalyzerController) CheckRules(ctx *gin.Context) {
	var req models.AnalyzeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	results, err := c.analyzer.CheckRules(ctx.Request.Context(), req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, results)
}

// Search is the POST /api/search handler.
func (c *AnalyzerController) Search(ctx *gin.Context) {
	var req models.SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.retriever.Search(ctx.Request.Context(), req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// abortWithError maps the service error taxonomy to HTTP statuses:
// validation errors are the client's fault, missing sources are 404, model
// responses that fail to parse and upstream service failures are gateway
// errors.
func abortWithError(ctx *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConfig):
		status = http.StatusInternalServerError
	case errors.Is(err, services.ErrParse):
		status = http.StatusBadGateway
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
