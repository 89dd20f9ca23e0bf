package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"stock-insight/internal/api"
	"stock-insight/internal/config"
	"stock-insight/internal/insight"
	"stock-insight/internal/market"
	"stock-insight/internal/session"
	"stock-insight/internal/store"
)

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "configs/app.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		hlog.Fatalf("config error: %v", err)
	}
	hlog.SetLevel(logLevel(cfg.Log.Level))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	h := server.Default(server.WithHostPorts(addr))

	var st *store.Store
	if cfg.Store.Sqlite.Path != "" {
		st, err = store.Open(cfg.Store.Sqlite.Path)
		if err != nil {
			hlog.Fatalf("store error: %v", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				hlog.Errorf("store close error: %v", err)
			}
		}()
	} else {
		hlog.Infof("lookup log disabled (store.sqlite.path is empty)")
	}

	mktCfg, err := marketConfig(cfg.Market.ParseFailure)
	if err != nil {
		hlog.Fatalf("config error: %v", err)
	}
	if cfg.Market.APIKey == "" {
		hlog.Warnf("market.api_key is empty: every lookup will be rejected by the provider")
	}
	provider := market.NewAlphaVantageProvider(cfg.Market.APIKey,
		market.WithBaseURL(cfg.Market.BaseURL),
		market.WithTimeout(time.Duration(cfg.Market.TimeoutMs)*time.Millisecond),
		market.WithRequestsPerMinute(cfg.Market.RequestsPerMinute),
	)
	mktSvc := market.NewService(provider, mktCfg, st)

	sessions := session.NewManager(mktSvc, cfg.Session.MaxSessions, cfg.Market.DefaultTimeframe)

	agent := insight.New(insight.Config{
		Enabled:         cfg.Insight.Enabled,
		Backend:         cfg.Insight.Backend,
		Model:           cfg.Insight.Model,
		APIKey:          cfg.Insight.APIKey,
		BaseURL:         cfg.Insight.BaseURL,
		ByAzure:         cfg.Insight.ByAzure,
		APIVersion:      cfg.Insight.APIVersion,
		TimeoutMs:       cfg.Insight.TimeoutMs,
		Temperature:     cfg.Insight.Temperature,
		TopK:            cfg.Insight.TopK,
		TopP:            cfg.Insight.TopP,
		MaxOutputTokens: cfg.Insight.MaxOutputTokens,
	})

	api.RegisterRoutes(h, mktSvc, sessions, agent, st)

	hlog.Infof("server starting on %s (log.level=%s, insight=%t)", addr, cfg.Log.Level, agent.Enabled())
	h.Spin()
}

func marketConfig(pf config.ParseFailureConfig) (market.Config, error) {
	var (
		out market.Config
		err error
	)
	if out.QuotePolicy, err = market.ParseParsePolicy(pf.Quote); err != nil {
		return out, fmt.Errorf("market.parse_failure.quote: %w", err)
	}
	if out.FundamentalsPolicy, err = market.ParseParsePolicy(pf.Fundamentals); err != nil {
		return out, fmt.Errorf("market.parse_failure.fundamentals: %w", err)
	}
	if out.SeriesPolicy, err = market.ParseParsePolicy(pf.Series); err != nil {
		return out, fmt.Errorf("market.parse_failure.series: %w", err)
	}
	return out, nil
}

func logLevel(s string) hlog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return hlog.LevelDebug
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}
