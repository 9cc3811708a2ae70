package httpapi

import (
	"errors"
	"net/http"
	"time"

	"billing-console/internal/audit"
	"billing-console/internal/auth"
	"billing-console/internal/ledger"
	"billing-console/internal/rating"
	"billing-console/internal/rbac"
	"billing-console/internal/reporting"
	"billing-console/internal/statement"
	"billing-console/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
// Authorization lives in middleware; the billing core never sees roles.

type Handlers struct {
	Auth       *auth.Manager
	Ledger     *ledger.Service
	Rating     *rating.Engine
	Statements *statement.Generator
	Lifecycle  *statement.Lifecycle
	Reports    *reporting.Service
	Audit      *audit.Service

	// Redis serializes concurrent statement generation per tenant/period.
	// Optional: generation is safe without it, the lock only avoids wasted
	// duplicate work.
	Redis *redis.Client
}

const generateLockTTL = 2 * time.Minute

// --- Auth ---

type loginRequest struct {
	UserID    string `json:"user_id"`
	TenantID  string `json:"tenant_id"`
	AccountID string `json:"account_id,omitempty"`
	Role      string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.TenantID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, tenant_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.TenantID, req.AccountID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Ledger ---

type ingestEventRequest struct {
	AccountID string `json:"account_id,omitempty"`
	ProgramID string `json:"program_id,omitempty"`

	EventType           string            `json:"event_type"`
	ExternalReferenceID string            `json:"external_reference_id"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	OccurredAt          time.Time         `json:"occurred_at"`
}

// IngestEvent appends one business event to the tenant's ledger.
// Replaying the same external reference returns the original event with 200.
func (h Handlers) IngestEvent(c *gin.Context) {
	if h.Ledger == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "ledger not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	actorUserID, _ := auth.UserID(c.Request.Context())

	var req ingestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	e, created, err := h.Ledger.Ingest(c.Request.Context(), ledger.IngestRequest{
		TenantID:            tenantID,
		AccountID:           req.AccountID,
		ProgramID:           req.ProgramID,
		EventType:           ledger.EventType(req.EventType),
		ExternalReferenceID: req.ExternalReferenceID,
		Metadata:            req.Metadata,
		OccurredAt:          req.OccurredAt,
		ActorUserID:         actorUserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidEvent):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, ledger.ErrUnknownScope):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, e)
}

// --- Rating ---

type periodRequest struct {
	AccountID   string `json:"account_id,omitempty"`
	PeriodStart string `json:"period_start"` // YYYY-MM-DD
	PeriodEnd   string `json:"period_end"`   // YYYY-MM-DD
}

func (r periodRequest) parse() (start, end time.Time, err error) {
	start, err = time.ParseInLocation("2006-01-02", r.PeriodStart, time.UTC)
	if err != nil {
		return
	}
	end, err = time.ParseInLocation("2006-01-02", r.PeriodEnd, time.UTC)
	return
}

// RunRating rates the tenant's unrated events for a period.
func (h Handlers) RunRating(c *gin.Context) {
	if h.Rating == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rating not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	var req periodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	start, end, err := req.parse()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "period_start and period_end must be YYYY-MM-DD"})
		return
	}

	created, err := h.Rating.RateForPeriod(c.Request.Context(), tenantID, req.AccountID, start, end)
	if err != nil {
		if errors.Is(err, rating.ErrInvalidPeriod) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rating run failed"})
		return
	}

	if h.Audit != nil {
		actorUserID, _ := auth.UserID(c.Request.Context())
		_ = h.Audit.LogRatingRun(c.Request.Context(), tenantID, actorUserID, created)
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

// --- Statements ---

// GenerateStatement rates the period, then aggregates rated transactions
// and flat charges into a new draft statement.
func (h Handlers) GenerateStatement(c *gin.Context) {
	if h.Statements == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "statements not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	var req periodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	start, end, err := req.parse()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "period_start and period_end must be YYYY-MM-DD"})
		return
	}

	if h.Redis != nil {
		key := "genlock:" + tenantID + ":" + req.AccountID + ":" + req.PeriodStart + ":" + req.PeriodEnd
		token := uuid.NewString()
		ok, err := utils.AcquireRunLock(c.Request.Context(), h.Redis, key, token, generateLockTTL)
		if err == nil && !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "generation already in progress for this period"})
			return
		}
		if err == nil {
			defer func() { _ = utils.ReleaseRunLock(c.Request.Context(), h.Redis, key, token) }()
		}
		// Lock errors fall through: generation is safe without the lock.
	}

	st, items, err := h.Statements.Generate(c.Request.Context(), tenantID, req.AccountID, start, end)
	if err != nil {
		if errors.Is(err, rating.ErrInvalidPeriod) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "statement generation failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"statement": st, "line_items": items})
}

// GetStatement returns one statement with its line items.
func (h Handlers) GetStatement(c *gin.Context) {
	if h.Statements == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "statements not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	statementID := c.Param("statement_id")
	if statementID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "statement_id required"})
		return
	}

	st, items, err := h.Statements.Get(c.Request.Context(), tenantID, statementID)
	if err != nil {
		if errors.Is(err, statement.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "statement not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "statement lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statement": st, "line_items": items})
}

type transitionRequest struct {
	Status string `json:"status"`
}

// TransitionStatement advances a statement through draft -> reviewed -> finalized.
func (h Handlers) TransitionStatement(c *gin.Context) {
	if h.Lifecycle == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lifecycle not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	statementID := c.Param("statement_id")
	if statementID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "statement_id required"})
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	st, err := h.Lifecycle.Transition(c.Request.Context(), tenantID, statementID, statement.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, statement.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "statement not found"})
		case errors.Is(err, statement.ErrInvalidTransition):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, statement.ErrStatusConflict):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "transition failed"})
		}
		return
	}
	c.JSON(http.StatusOK, st)
}

// --- Reporting ---

func parseRangeQuery(c *gin.Context) (reporting.TimeRange, bool) {
	from, err := time.ParseInLocation("2006-01-02", c.Query("from"), time.UTC)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be YYYY-MM-DD"})
		return reporting.TimeRange{}, false
	}
	to, err := time.ParseInLocation("2006-01-02", c.Query("to"), time.UTC)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be YYYY-MM-DD"})
		return reporting.TimeRange{}, false
	}
	// The query range is inclusive of the "to" day.
	return reporting.TimeRange{From: from, To: to.AddDate(0, 0, 1)}, true
}

func (h Handlers) RatedSpendSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	rng, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	out, err := h.Reports.RatedSpend(c.Request.Context(), reporting.RatedSpendRequest{
		TenantID:  tenantID,
		Range:     rng,
		AccountID: c.Query("account_id"),
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) StatementSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	rng, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	out, err := h.Reports.StatementSummary(c.Request.Context(), reporting.StatementSummaryRequest{
		TenantID: tenantID,
		Range:    rng,
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Audit ---

// ListAuditTrail is internal-only; routes must restrict it to super_admin.
func (h Handlers) ListAuditTrail(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil || tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	entries, err := h.Audit.ListForTenant(c.Request.Context(), tenantID, 100)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Convenience middleware bundles.

func RequireTenantAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireTenant(), rbac.RequireAnyRole(roles...)}
}
