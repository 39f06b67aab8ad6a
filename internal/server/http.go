package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/repository"
	"github.com/joseph-ayodele/label-matcher/internal/services/match"
)

// Offers is the read side of the offers table.
type Offers interface {
	Transit(ctx context.Context, day string) ([]repository.Offer, error)
	Details(ctx context.Context, id string) (*repository.OfferDetails, error)
}

type HTTPDeps struct {
	Matcher Matcher
	Catalog CatalogStatuser
	Offers  Offers
	Metrics http.Handler // optional
}

// Controller holds the HTTP handlers.
type Controller struct {
	deps   HTTPDeps
	logger *slog.Logger
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewHTTPServer builds the echo instance with every route mounted.
func NewHTTPServer(deps HTTPDeps, logger *slog.Logger) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{deps: deps, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(c.requestID)
	e.HTTPErrorHandler = c.handleError

	api := e.Group("/api")
	api.POST("/detect", c.Detect)
	api.GET("/offers/transit", c.TransitOffers)
	api.GET("/offers/:id", c.OfferDetails)
	api.GET("/catalog", c.CatalogStatus)

	e.GET("/healthz", c.Health)
	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics))
	}
	return e
}

// Detect resolves the OCR text in the request body.
func (c *Controller) Detect(ctx echo.Context) error {
	var req match.Request
	if err := ctx.Bind(&req); err != nil {
		c.logger.Warn("http.detect.bind_failed", "req_id", requestID(ctx), "error", err)
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	res, err := c.deps.Matcher.Resolve(ctx.Request().Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

// TransitOffers lists in-transit offers for ?fecha=YYYY-MM-DD, today by default.
func (c *Controller) TransitOffers(ctx echo.Context) error {
	offers, err := c.deps.Offers.Transit(ctx.Request().Context(), ctx.QueryParam("fecha"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, offers)
}

func (c *Controller) OfferDetails(ctx echo.Context) error {
	d, err := c.deps.Offers.Details(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}

func (c *Controller) CatalogStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.deps.Catalog.Status())
}

// Health reports 503 until a non-empty catalog is loaded.
func (c *Controller) Health(ctx echo.Context) error {
	st := c.deps.Catalog.Status()
	if st.Entries == 0 {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]any{"status": "catalog_unavailable", "last_error": st.LastError})
	}
	return ctx.JSON(http.StatusOK, map[string]any{"status": "ok", "catalog_version": st.Version})
}

func (c *Controller) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		reqCtx, rid := common.EnsureRequestID(ctx.Request().Context())
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))
		ctx.Response().Header().Set(echo.HeaderXRequestID, rid)

		err := next(ctx)
		c.logger.Debug("http.request",
			"req_id", rid,
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}

// handleError maps application errors onto status codes with a
// {success:false,error} body.
func (c *Controller) handleError(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}
	code, msg := httpStatus(err)
	if code >= http.StatusInternalServerError {
		c.logger.Error("http.request.failed", "req_id", requestID(ctx), "path", ctx.Path(), "error", err)
	} else {
		c.logger.Warn("http.request.rejected", "req_id", requestID(ctx), "path", ctx.Path(), "status", code, "error", err)
	}
	if werr := ctx.JSON(code, errorResponse{Error: msg}); werr != nil {
		c.logger.Error("http.response.write_failed", "error", werr)
	}
}

func httpStatus(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	}

	msg := err.Error()
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, msg
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, msg
	case errors.Is(err, common.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, msg
	}
	return http.StatusInternalServerError, "internal error"
}

func requestID(ctx echo.Context) string {
	return common.RequestIDFromContext(ctx.Request().Context())
}
