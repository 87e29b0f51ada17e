package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"market-terminal/src/analysis"
	"market-terminal/src/interfaces"
	"market-terminal/src/logger"
	"market-terminal/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

// APIServer exposes the sink and the indicator engine over REST and pushes
// cycle reports to websocket clients. It reads from the sink on demand; it
// never holds market data of its own.
type APIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	DB     interfaces.IDatabase
	Engine *analysis.Engine
	engine *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MCycleReport
	register   chan *Client
	unregister chan *Client

	// Last report per pipeline, replayed to clients on connect
	lastReports map[string]models.MCycleReport
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, db interfaces.IDatabase, engine *analysis.Engine, logger *logger.Logger) *APIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Engine:  engine,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered so a slow hub never blocks the schedulers
		broadcast:   make(chan models.MCycleReport, 64),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		lastReports: make(map[string]models.MCycleReport),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/assets", s.getAssets)
	s.engine.GET("/api/market", s.getMarket)
	s.engine.GET("/api/indicators", s.getIndicators)
	s.engine.GET("/api/summary", s.getSummary)
	s.engine.GET("/api/options/underlyings", s.getUnderlyings)
	s.engine.GET("/api/options/:ticker", s.getOptionChain)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	var latest time.Time
	for _, r := range s.lastReports {
		if r.StartedAt.After(latest) {
			latest = r.StartedAt
		}
	}
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": connections,
		"last_cycle":  latest,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getAssets(c *gin.Context) {
	types, err := s.DB.DistinctAssetTypes()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"asset_types": types})
}

// -----------------------------------------------------------------------------

// marketFilter builds the sink filter from query parameters. asset_type is
// mandatory; tickers is an optional comma-separated list.
func marketFilter(c *gin.Context) (models.MMarketFilter, bool) {
	assetType := c.Query("asset_type")
	if assetType == "" {
		c.JSON(400, gin.H{"error": "asset_type query parameter is required"})
		return models.MMarketFilter{}, false
	}

	filter := models.MMarketFilter{AssetType: models.MAssetType(assetType)}
	if raw := c.Query("tickers"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Tickers = append(filter.Tickers, t)
			}
		}
	}
	return filter, true
}

// -----------------------------------------------------------------------------

func (s *APIServer) getMarket(c *gin.Context) {
	filter, ok := marketFilter(c)
	if !ok {
		return
	}

	rows, err := s.DB.QueryMarketRows(filter)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"asset_type": filter.AssetType,
		"rows":       rows,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getIndicators(c *gin.Context) {
	filter, ok := marketFilter(c)
	if !ok {
		return
	}

	mode := c.DefaultQuery("mode", analysis.ModeRollingMean)

	rows, err := s.DB.QueryMarketRows(filter)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	series, err := s.Engine.Compute(rows, mode)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"asset_type": filter.AssetType,
		"mode":       mode,
		"series":     series,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSummary(c *gin.Context) {
	filter, ok := marketFilter(c)
	if !ok {
		return
	}

	rows, err := s.DB.QueryMarketRows(filter)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"asset_type": filter.AssetType,
		"summaries":  s.Engine.Summaries(rows),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getUnderlyings(c *gin.Context) {
	underlyings, err := s.DB.DistinctUnderlyings()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"underlyings": underlyings})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getOptionChain(c *gin.Context) {
	ticker := c.Param("ticker")

	history, err := s.DB.QueryOptionRows(ticker)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	if len(history) == 0 {
		c.JSON(404, gin.H{"error": fmt.Sprintf("no options history for %s", ticker)})
		return
	}

	snapshot := analysis.LatestSnapshot(history)
	calls, puts := analysis.SplitLegs(snapshot)

	var lastUpdated time.Time
	for _, row := range snapshot {
		if row.LastUpdated.After(lastUpdated) {
			lastUpdated = row.LastUpdated
		}
	}

	c.JSON(200, gin.H{
		"underlying":   ticker,
		"expiry":       snapshot[0].Expiry,
		"last_updated": lastUpdated,
		"calls":        calls,
		"puts":         puts,
	})
}
