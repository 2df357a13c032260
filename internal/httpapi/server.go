// Package httpapi exposes a transmute.Registry over HTTP: running
// transmutations, registering edges against already-known functions, and
// streaming execution events over a websocket.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nyxwell/transmute/internal/cache"
	"github.com/nyxwell/transmute/internal/logging"
	"github.com/nyxwell/transmute/internal/observer"
	"github.com/nyxwell/transmute/internal/storage"
	"github.com/nyxwell/transmute/pkg/transmute"
)

// Server wires a Registry and its supporting infrastructure into a gin
// router.
type Server struct {
	registry  *transmute.Registry
	edges     *storage.EdgeRepository
	apiKeys   *storage.APIKeyRepository
	functions *storage.FunctionRegistry
	planCache *cache.PlanCache
	hub       *observer.Hub
	logger    *logging.Logger
	validate  *validator.Validate

	jwtSecret string
	jwtTTL    time.Duration

	engine *gin.Engine
}

// Deps bundles Server's constructor dependencies. APIKeys and PlanCache may
// be nil, in which case auth and cache-invalidation are no-ops. JWTSecret
// may be empty, in which case session issuance and WebSocket token checks
// are disabled (the WebSocket endpoint stays open, as before).
type Deps struct {
	Registry      *transmute.Registry
	Edges         *storage.EdgeRepository
	APIKeys       *storage.APIKeyRepository
	Functions     *storage.FunctionRegistry
	PlanCache     *cache.PlanCache
	Hub           *observer.Hub
	Logger        *logging.Logger
	JWTSecret     string
	JWTSessionTTL time.Duration
}

// NewServer builds a Server and assembles its route table.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.JWTSessionTTL == 0 {
		deps.JWTSessionTTL = time.Hour
	}

	s := &Server{
		registry:  deps.Registry,
		edges:     deps.Edges,
		apiKeys:   deps.APIKeys,
		functions: deps.Functions,
		planCache: deps.PlanCache,
		hub:       deps.Hub,
		logger:    deps.Logger,
		validate:  validator.New(),
		jwtSecret: deps.JWTSecret,
		jwtTTL:    deps.JWTSessionTTL,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(Recovery(s.logger), RequestLogger(s.logger), gzip.Gzip(gzip.DefaultCompression))

	v1 := engine.Group("/v1")
	v1.GET("/health", s.handleHealth)
	v1.POST("/transmute", s.handleTransmute)
	v1.GET("/edges", s.handleListEdges)
	v1.GET("/ws", s.handleWebSocket)

	if s.apiKeys != nil {
		admin := v1.Group("/admin", APIKeyAuth(s.apiKeys))
		admin.POST("/edges", s.handleRegisterEdge)
		admin.POST("/api-keys", s.handleCreateAPIKey)
		admin.POST("/session", s.handleCreateSession)
	} else {
		v1.POST("/edges", s.handleRegisterEdge)
	}

	s.engine = engine
	return s
}

// Handler returns the assembled http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }
