package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-playground/validator/v10"

	"stock-insight/internal/insight"
	"stock-insight/internal/market"
	"stock-insight/internal/session"
	"stock-insight/internal/store"
)

type SearchRequest struct {
	Symbol string `json:"symbol" validate:"required,max=32"`
}

type TimeframeRequest struct {
	Timeframe string `json:"timeframe" validate:"required,max=8"`
}

var validate = validator.New()

func RegisterRoutes(h *server.Hertz, mkt session.Fetcher, sessions *session.Manager, agent *insight.Agent, st *store.Store) {
	h.GET("/healthz", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	h.GET("/api/v1/timeframes", func(_ context.Context, c *app.RequestContext) {
		items := make([]map[string]any, 0, len(market.Timeframes()))
		for _, tf := range market.Timeframes() {
			items = append(items, map[string]any{"token": tf, "days": market.WindowSize(tf)})
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"default": market.DefaultTimeframe,
			"items":   items,
		})
	})

	h.GET("/api/v1/quote", func(ctx context.Context, c *app.RequestContext) {
		if mkt == nil {
			writeError(c, http.StatusInternalServerError, "market service not configured")
			return
		}
		q, err := mkt.GetQuote(ctx, string(c.Query("symbol")))
		if err != nil {
			writeError(c, statusFor(err), err.Error())
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":    true,
			"quote": newQuoteView(q),
		})
	})

	h.GET("/api/v1/fundamentals", func(ctx context.Context, c *app.RequestContext) {
		if mkt == nil {
			writeError(c, http.StatusInternalServerError, "market service not configured")
			return
		}
		f, err := mkt.GetFundamentals(ctx, string(c.Query("symbol")))
		if err != nil {
			writeError(c, statusFor(err), err.Error())
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":           true,
			"fundamentals": newFundamentalsView(f),
		})
	})

	h.GET("/api/v1/series", func(ctx context.Context, c *app.RequestContext) {
		if mkt == nil {
			writeError(c, http.StatusInternalServerError, "market service not configured")
			return
		}
		timeframe := strings.ToUpper(strings.TrimSpace(string(c.Query("timeframe"))))
		if timeframe == "" {
			timeframe = market.DefaultTimeframe
		}
		ts, err := mkt.GetTimeSeries(ctx, string(c.Query("symbol")), timeframe)
		if err != nil {
			writeError(c, statusFor(err), err.Error())
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":        true,
			"timeframe": timeframe,
			"window":    market.WindowSize(timeframe),
			"series":    newSeriesView(ts),
		})
	})

	h.POST("/api/v1/sessions", func(_ context.Context, c *app.RequestContext) {
		if sessions == nil {
			writeError(c, http.StatusInternalServerError, "sessions not configured")
			return
		}
		s, err := sessions.Create()
		if err != nil {
			writeError(c, statusFor(err), err.Error())
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"id":      s.ID(),
			"session": newSessionView(s.ID(), s.Snapshot()),
		})
	})

	h.GET("/api/v1/sessions/:id", func(_ context.Context, c *app.RequestContext) {
		s, ok := lookupSession(c, sessions)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"session": newSessionView(s.ID(), s.Snapshot()),
		})
	})

	h.DELETE("/api/v1/sessions/:id", func(_ context.Context, c *app.RequestContext) {
		if sessions == nil {
			writeError(c, http.StatusInternalServerError, "sessions not configured")
			return
		}
		if err := sessions.Delete(c.Param("id")); err != nil {
			writeError(c, statusFor(err), err.Error())
			return
		}
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})

	h.POST("/api/v1/sessions/:id/search", func(ctx context.Context, c *app.RequestContext) {
		s, ok := lookupSession(c, sessions)
		if !ok {
			return
		}
		var req SearchRequest
		if !bindAndValidate(c, &req) {
			return
		}
		err := s.Search(ctx, req.Symbol)
		view := newSessionView(s.ID(), s.Snapshot())
		if err != nil {
			c.JSON(statusFor(err), map[string]any{
				"ok":      false,
				"error":   err.Error(),
				"session": view,
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"session": view,
		})
	})

	h.POST("/api/v1/sessions/:id/timeframe", func(ctx context.Context, c *app.RequestContext) {
		s, ok := lookupSession(c, sessions)
		if !ok {
			return
		}
		var req TimeframeRequest
		if !bindAndValidate(c, &req) {
			return
		}
		err := s.ChangeTimeframe(ctx, strings.ToUpper(strings.TrimSpace(req.Timeframe)))
		view := newSessionView(s.ID(), s.Snapshot())
		if err != nil {
			c.JSON(statusFor(err), map[string]any{
				"ok":      false,
				"error":   err.Error(),
				"session": view,
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"session": view,
		})
	})

	h.POST("/api/v1/insights", func(ctx context.Context, c *app.RequestContext) {
		var req insight.Request
		if !bindAndValidate(c, &req) {
			return
		}
		var warnings []string
		out, err := agent.Generate(ctx, req)
		if err != nil {
			if errors.Is(err, insight.ErrNoInsight) {
				writeError(c, http.StatusBadGateway, err.Error())
				return
			}
			hlog.CtxWarnf(ctx, "insight generate error: %v", err)
			warnings = append(warnings, "insight generation failed, fallback used")
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"insight":  out,
			"warnings": warnings,
		})
	})

	h.POST("/api/v1/test/insight/ping", func(ctx context.Context, c *app.RequestContext) {
		resp, err := insight.Ping(agent, ctx)
		if err != nil {
			hlog.CtxWarnf(ctx, "insight ping error: %v", err)
		}
		c.JSON(http.StatusOK, resp)
	})

	h.GET("/api/v1/lookups", func(_ context.Context, c *app.RequestContext) {
		if st == nil {
			writeError(c, http.StatusInternalServerError, "store not configured")
			return
		}
		symbol := strings.ToUpper(strings.TrimSpace(string(c.Query("symbol"))))
		kind := string(c.Query("kind"))
		limit, err := parseLimit(string(c.Query("limit")))
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		offset, err := parseOffset(string(c.Query("offset")))
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		items, err := st.QueryLookups(symbol, kind, limit, offset)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":    true,
			"items": items,
		})
	})
}

func writeError(c *app.RequestContext, status int, msg string) {
	c.JSON(status, map[string]any{
		"ok":    false,
		"error": msg,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrEmptySymbol):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrNotFound), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoActiveQuote), errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, session.ErrSessionLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func lookupSession(c *app.RequestContext, sessions *session.Manager) (*session.Session, bool) {
	if sessions == nil {
		writeError(c, http.StatusInternalServerError, "sessions not configured")
		return nil, false
	}
	s, err := sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, statusFor(err), err.Error())
		return nil, false
	}
	return s, true
}

func bindAndValidate(c *app.RequestContext, req any) bool {
	if err := c.BindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 200, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if v > 1000 {
		return 1000, nil
	}
	return v, nil
}

func parseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid offset")
	}
	return v, nil
}
