// Package historical exposes the company-type registry over HTTP.
//
// Every response uses the envelope {"code": 0, "message": "success", "data": ...};
// failures carry the HTTP status as code and no data, except validation
// failures, which return the errors and warnings as data.
//
// Undefined values: a metric whose denominator is zero (revenue per employee
// with no employees, LTV with zero churn) or that depends on an undefined
// input is encoded as JSON null. Series keep one slot per period, so a null
// inside a series marks that single period as undefined. Scalar metrics such
// as revenue_cagr are a bare number or null.
package historical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	core "company_historicals/pkg/core/historical"
	"company_historicals/pkg/core/legacy"
	"company_historicals/pkg/core/payload"
	"company_historicals/pkg/core/registry"
	"company_historicals/pkg/core/report"
	"company_historicals/pkg/core/store"
	"company_historicals/pkg/logger"
)

const maxBodyBytes = 4 << 20

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CalculateResponse is the data of a successful calculation.
type CalculateResponse struct {
	RunID  string                 `json:"run_id,omitempty"`
	Result core.CalculationResult `json:"result"`
}

// Handler serves the historical endpoints.
type Handler struct {
	registry      *registry.Registry
	runs          *store.RunStore
	results       *cache.Cache
	standardHours float64
}

// NewHandler wires the registry, an optional run store and a result cache.
// A nil cache gets a default one. standardHours is the service calculator's
// tuning and is used to convert legacy payloads.
func NewHandler(r *registry.Registry, runs *store.RunStore, results *cache.Cache, standardHours float64) *Handler {
	if results == nil {
		results = cache.New(15*time.Minute, 30*time.Minute)
	}
	return &Handler{registry: r, runs: runs, results: results, standardHours: standardHours}
}

// RegisterRoutes mounts the endpoints on api (normally the /api group).
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/company-types", h.ListCompanyTypes)
	api.GET("/company-types/:type", h.GetCompanyType)
	api.GET("/company-types/:type/metrics", h.GetSupportedMetrics)

	api.POST("/historical/:type/validate", h.Validate)
	api.POST("/historical/:type/calculate", h.Calculate)
	api.POST("/legacy/service/calculate", h.CalculateLegacy)

	api.GET("/runs", h.ListRuns)
	api.GET("/runs/:id", h.GetRun)
	api.GET("/runs/:id/report", h.GetRunReport)
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Code: status, Message: message})
}

// registryError maps registry errors onto HTTP statuses.
func registryError(c *gin.Context, err error) {
	var invalid *registry.InvalidHistoricalDataError
	switch {
	case errors.Is(err, registry.ErrUnsupportedCompanyType):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Code:    http.StatusUnprocessableEntity,
			Message: "invalid historical data",
			Data: core.ValidationOutcome{
				Valid:    false,
				Errors:   invalid.Errors,
				Warnings: invalid.Warnings,
			},
		})
	default:
		errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

// ListCompanyTypes GET /api/company-types
func (h *Handler) ListCompanyTypes(c *gin.Context) {
	success(c, h.registry.ListCompanyTypes())
}

// GetCompanyType GET /api/company-types/:type
func (h *Handler) GetCompanyType(c *gin.Context) {
	desc, err := h.registry.GetCompanyTypeInfo(c.Param("type"))
	if err != nil {
		registryError(c, err)
		return
	}
	success(c, desc)
}

// GetSupportedMetrics GET /api/company-types/:type/metrics
func (h *Handler) GetSupportedMetrics(c *gin.Context) {
	metrics, err := h.registry.GetSupportedMetrics(c.Param("type"))
	if err != nil {
		registryError(c, err)
		return
	}
	success(c, gin.H{"company_type": c.Param("type"), "metrics": metrics})
}

// readBody reads the whole request body. Bodies over maxBodyBytes are
// rejected before decoding; a cut-off body could still be repaired into
// a smaller, valid-looking request.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes))
			return nil, false
		}
		errorResponse(c, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return body, true
}

func (h *Handler) readRequest(c *gin.Context) (payload.Request, bool) {
	body, ok := readBody(c)
	if !ok {
		return payload.Request{}, false
	}
	req, strategy, err := payload.DecodeRequest(body)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return payload.Request{}, false
	}
	if strategy != payload.StrategyJSON {
		logger.FromContext(c.Request.Context()).Debug("Request body needed lenient parsing", "strategy", string(strategy))
	}
	return req, true
}

// Validate POST /api/historical/:type/validate
func (h *Handler) Validate(c *gin.Context) {
	companyType := c.Param("type")
	if _, err := h.registry.GetCompanyTypeInfo(companyType); err != nil {
		registryError(c, err)
		return
	}
	req, ok := h.readRequest(c)
	if !ok {
		return
	}
	outcome, err := h.registry.ValidateHistoricalData(companyType, req.Data)
	if err != nil {
		registryError(c, err)
		return
	}
	success(c, outcome)
}

// Calculate POST /api/historical/:type/calculate
//
// Identical requests are answered from the result cache, including the
// run ID of the first calculation.
func (h *Handler) Calculate(c *gin.Context) {
	companyType := c.Param("type")
	if _, err := h.registry.GetCompanyTypeInfo(companyType); err != nil {
		registryError(c, err)
		return
	}
	req, ok := h.readRequest(c)
	if !ok {
		return
	}

	key, err := cacheKey(companyType, req)
	if err == nil {
		if cached, found := h.results.Get(key); found {
			success(c, cached)
			return
		}
	}

	res, err := h.registry.CalculateHistoricalStatements(companyType, req.Data, req.Assumptions)
	if err != nil {
		registryError(c, err)
		return
	}
	h.respondWithRun(c, companyType, res, key)
}

// CalculateLegacy POST /api/legacy/service/calculate
func (h *Handler) CalculateLegacy(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	p, err := legacy.Parse(body)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := legacy.Calculate(h.registry, p, h.standardHours)
	if err != nil {
		registryError(c, err)
		return
	}
	h.respondWithRun(c, res.Metadata.CompanyType, res, "")
}

func (h *Handler) respondWithRun(c *gin.Context, companyType string, res core.CalculationResult, key string) {
	resp := CalculateResponse{Result: res}
	if h.runs != nil {
		run, err := h.runs.Save(c.Request.Context(), companyType, res)
		if err != nil {
			logger.FromContext(c.Request.Context()).Error("Failed to save run", "companyType", companyType, "error", err)
			errorResponse(c, http.StatusInternalServerError, "failed to save run")
			return
		}
		resp.RunID = run.ID
	}
	if key != "" {
		h.results.SetDefault(key, resp)
	}
	logger.FromContext(c.Request.Context()).Info("Historical statements calculated",
		"companyType", companyType, "periods", res.Metadata.PeriodsProcessed, "runId", resp.RunID)
	success(c, resp)
}

func cacheKey(companyType string, req payload.Request) (string, error) {
	// Map keys marshal sorted, so equal requests hash equally. NaN observations
	// cannot be marshalled; those requests are not cached.
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "calc:" + companyType + ":" + hex.EncodeToString(sum[:]), nil
}

// ListRuns GET /api/runs?company_type=&limit=
func (h *Handler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		errorResponse(c, http.StatusServiceUnavailable, "run storage is not configured")
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := h.runs.List(c.Request.Context(), c.Query("company_type"), limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	summaries := make([]gin.H, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, gin.H{
			"id":           r.ID,
			"company_type": r.CompanyType,
			"created_at":   r.CreatedAt,
		})
	}
	success(c, summaries)
}

func (h *Handler) loadRun(c *gin.Context) (store.Run, bool) {
	if h.runs == nil {
		errorResponse(c, http.StatusServiceUnavailable, "run storage is not configured")
		return store.Run{}, false
	}
	run, err := h.runs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, http.StatusNotFound, err.Error())
		return store.Run{}, false
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return store.Run{}, false
	}
	return run, true
}

// GetRun GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	run, ok := h.loadRun(c)
	if !ok {
		return
	}
	success(c, run)
}

// GetRunReport GET /api/runs/:id/report renders the run as HTML.
func (h *Handler) GetRunReport(c *gin.Context) {
	run, ok := h.loadRun(c)
	if !ok {
		return
	}
	desc, err := h.registry.GetCompanyTypeInfo(run.CompanyType)
	if err != nil {
		registryError(c, err)
		return
	}
	html, err := report.Render(desc, run.Result)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
