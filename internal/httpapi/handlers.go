package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nyxwell/transmute/internal/observer"
	"github.com/nyxwell/transmute/pkg/transmute"
)

func (s *Server) handleHealth(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTransmute(c *gin.Context) {
	var req TransmuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ErrValidationFailed)
		return
	}

	opts := []transmute.TransmuteOption{
		WithSrcCategoryFromString(req.SrcCat),
	}
	if len(req.SrcTags) > 0 {
		opts = append(opts, transmute.WithSrcTags(tagsFromStrings(req.SrcTags)...))
	}
	if len(req.DstTags) > 0 {
		opts = append(opts, transmute.WithDstTags(tagsFromStrings(req.DstTags)...))
	}
	if req.Explicit {
		opts = append(opts, transmute.WithExplicit())
	}
	if req.RetryCount > 0 {
		opts = append(opts, transmute.WithCallRetryBudget(req.RetryCount))
	}

	result, err := s.registry.Transmute(c.Request.Context(), req.Value,
		transmute.CatKey(req.SrcCat), transmute.CatKey(req.DstCat), opts...)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TransmuteResponse{Value: result})
}

// WithSrcCategoryFromString is a thin adapter: the registry infers a
// request's source category from the value's Go type by default, but HTTP
// callers always state it explicitly as a string.
func WithSrcCategoryFromString(cat string) transmute.TransmuteOption {
	return transmute.WithSrcCategory(transmute.CatKey(cat))
}

func tagsFromStrings(names []string) []transmute.Tag {
	tags := make([]transmute.Tag, len(names))
	for i, n := range names {
		tags[i] = transmute.TagKey(n)
	}
	return tags
}

func (s *Server) handleListEdges(c *gin.Context) {
	table := s.registry.EdgeTable()
	summaries := make([]EdgeSummary, 0, table.Len())
	for _, e := range table.All() {
		summaries = append(summaries, EdgeSummary{
			Name:   e.Name,
			Cost:   e.Cost,
			CatIn:  e.CatIn.String(),
			CatOut: e.CatOut.String(),
		})
	}
	respondJSON(c, http.StatusOK, summaries)
}

func (s *Server) handleRegisterEdge(c *gin.Context) {
	var req RegisterEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ErrValidationFailed)
		return
	}

	fn, ok := s.functions.Lookup(req.FuncRef)
	if !ok {
		respondError(c, NewAPIError("UNKNOWN_FUNCTION", "func_ref names no registered function", http.StatusBadRequest))
		return
	}

	ctx := c.Request.Context()
	e := s.registry.RegisterEdge(ctx, req.Cost,
		transmute.CatKey(req.CatIn), tagsFromStrings(req.ReqIn),
		transmute.CatKey(req.CatOut), tagsFromStrings(req.ProvOut),
		fn, req.Name)

	if s.edges != nil {
		if err := s.edges.Save(ctx, e, req.FuncRef); err != nil {
			respondError(c, err)
			return
		}
	}
	if s.planCache != nil {
		if err := s.planCache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "plan cache invalidation failed", "error", err)
		}
	}

	respondJSON(c, http.StatusCreated, EdgeSummary{
		Name: e.Name, Cost: e.Cost, CatIn: e.CatIn.String(), CatOut: e.CatOut.String(),
	})
}

func (s *Server) handleCreateAPIKey(c *gin.Context) {
	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ErrValidationFailed)
		return
	}

	model, plaintext, err := s.apiKeys.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateAPIKeyResponse{
		ID: model.ID, Name: model.Name, Key: plaintext, KeyPrefix: model.KeyPrefix,
	})
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and registers a broadcast-only
// client on the Hub, optionally scoped to one execution via ?execution_id=.
func (s *Server) handleWebSocket(c *gin.Context) {
	if s.hub == nil {
		respondError(c, NewAPIError("WEBSOCKET_DISABLED", "event streaming is disabled", http.StatusNotImplemented))
		return
	}
	if _, ok := s.sessionTokenFromQuery(c); !ok {
		respondError(c, ErrUnauthorized)
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WarnContext(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}

	executionID := c.Query("execution_id")
	client := observer.NewClient(uuid.NewString(), conn, s.hub, executionID)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
