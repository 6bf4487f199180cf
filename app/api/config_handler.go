package api

import (
	"qa/types"

	"github.com/gofiber/fiber/v2"
)

type ConfigHandler struct {
	cfg types.Config
}

func NewConfigHandler(cfg types.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// HandleGetConfig exposes the effective chunking and retrieval settings.
// Secrets and models stay out of the response.
func (h *ConfigHandler) HandleGetConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"chunk_tokens":    h.cfg.ChunkTokens,
		"chunk_head":      h.cfg.ChunkHead,
		"chunk_tail":      h.cfg.ChunkTail,
		"match_fraction":  h.cfg.MatchFraction,
		"text_sim_weight": h.cfg.TextSimWeight,
	})
}
