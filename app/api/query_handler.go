package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"qa/app/agent"
	"qa/knowledge"
	"qa/model"
	"qa/types"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type QueryHandler struct {
	brain    *knowledge.Brain
	embedder model.EmbedderInterface
	agent    *agent.Agent
	logger   *slog.Logger
}

func NewQueryHandler(brain *knowledge.Brain, embedder model.EmbedderInterface, a *agent.Agent) *QueryHandler {
	return &QueryHandler{
		brain:    brain,
		embedder: embedder,
		agent:    a,
		logger:   slog.Default(),
	}
}

// HandleQuery serves one query over an upgraded websocket: embed the query,
// retrieve the best-matching context window, stream the generated answer
// fragment by fragment and finish with a citation trailer naming the source
// file and the matched page.
func (h *QueryHandler) HandleQuery(c *websocket.Conn) {
	defer c.Close()

	params := types.QueryParams{Query: c.Query("query")}
	if errors := types.Validate(&params); len(errors) > 0 {
		h.writeText(c, "query parameter is required")
		return
	}

	ctx := context.Background()
	reqID := uuid.New().String()
	h.logger.Info("get query request", "req_id", reqID, "query", params.Query)

	start := time.Now()
	vector, err := h.embedder.Embed(ctx, params.Query)
	if err != nil {
		h.logger.Warn("embed query failed", "req_id", reqID, "error", err)
		h.writeText(c, "failed to process query")
		return
	}
	h.logger.Info("embedding query done", "req_id", reqID, "spends", time.Since(start).Seconds())

	start = time.Now()
	matched, err := h.brain.Retrieve(ctx, vector, params.Query)
	if err != nil {
		h.logger.Warn("retrieve failed", "req_id", reqID, "error", err)
		h.writeText(c, "no knowledge matched this query")
		return
	}

	var contextText strings.Builder
	for _, chunk := range matched.Chunks {
		contextText.WriteString(chunk.Content)
	}
	page := matched.Chunks[0].Page
	h.logger.Info("match done",
		"req_id", reqID,
		"spends", time.Since(start).Seconds(),
		"file_name", matched.FileName,
		"page", page,
	)

	if err := h.writeText(c, ":\n"); err != nil {
		return
	}
	start = time.Now()
	err = h.agent.StreamAnswer(ctx, contextText.String(), params.Query, func(fragment string) error {
		return h.writeText(c, fragment)
	})
	if err != nil {
		h.logger.Warn("stream answer failed", "req_id", reqID, "error", err)
		return
	}

	citation := fmt.Sprintf("\n\n(see %s, page %d)", matched.FileName, page)
	if err := h.writeText(c, citation); err != nil {
		return
	}
	h.logger.Info("query answered", "req_id", reqID, "spends", time.Since(start).Seconds())
}

func (h *QueryHandler) writeText(c *websocket.Conn, text string) error {
	return c.WriteMessage(websocket.TextMessage, []byte(text))
}
