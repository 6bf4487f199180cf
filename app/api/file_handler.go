package api

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"qa/knowledge"
	"qa/parser"
	"qa/types"

	"github.com/gofiber/fiber/v2"
)

type FileHandler struct {
	brain    *knowledge.Brain
	queue    chan<- parser.File
	filesDir string
	logger   *slog.Logger
}

func NewFileHandler(brain *knowledge.Brain, queue chan<- parser.File, filesDir string) *FileHandler {
	return &FileHandler{
		brain:    brain,
		queue:    queue,
		filesDir: filesDir,
		logger:   slog.Default(),
	}
}

// HandleUpload saves the multipart file and enqueues it for indexing. The
// queue has capacity one, so the request blocks while a previous document
// is still in flight; slow embedding throttles uploads instead of piling
// work up behind the indexer.
func (h *FileHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	params := types.UploadParams{Uploader: c.FormValue("uploader")}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	path := filepath.Join(h.filesDir, fileHeader.Filename)
	if _, err := os.Stat(path); err == nil {
		h.logger.Info("get upload request", "file", fileHeader.Filename, "result", "already uploaded")
		return ErrAlreadyUploaded(fileHeader.Filename)
	}

	file, err := parser.Match(fileHeader.Filename, params.Uploader, path)
	if err != nil {
		h.logger.Info("get upload request", "file", fileHeader.Filename, "result", "type not supported")
		return ErrUnsupportedType(fileHeader.Filename)
	}

	if err := c.SaveFile(fileHeader, path); err != nil {
		h.logger.Error("write uploaded file failed", "file", fileHeader.Filename, "error", err)
		return err
	}
	h.logger.Info("get upload request", "file", fileHeader.Filename, "result", "uploaded")

	h.queue <- file
	return c.SendString("File uploaded successfully. Indexing...")
}

// HandleList returns the indexed document names in publish order.
func (h *FileHandler) HandleList(c *fiber.Ctx) error {
	list := h.brain.List()
	h.logger.Info("get list request", "count", len(list))
	return c.SendString("\n" + strings.Join(list, "\n"))
}
