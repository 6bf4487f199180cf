package server

import (
	"context"
	"log"
	"log/slog"
	"os"
	"slices"

	"qa/app/agent"
	"qa/app/api"
	"qa/chunker"
	"qa/knowledge"
	"qa/model"
	"qa/parser"
	"qa/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()
	cfg := loadConfig()
	if s.listenAddr == "" {
		s.listenAddr = cfg.ServerAddr
	}

	// Dependency checks run once, up front: the tokenizer, the storage
	// backend and the files directory are all fatal when missing.
	chk, err := chunker.NewTiktoken(cfg.ChunkTokens)
	if err != nil {
		log.Fatal("error to load tokenizer: ", err)
	}
	if err := os.MkdirAll(cfg.FilesDir, 0o755); err != nil {
		log.Fatal("error to create files dir: ", err)
	}
	kv, err := store.NewBoltKV(cfg.StorageDir)
	if err != nil {
		log.Fatal("error to open storage backend: ", err)
	}
	defer kv.Close()
	s.logger.Info("dependencies check succeed")

	storage := store.New(kv)
	brain, err := knowledge.NewBrain(ctx, storage, cfg)
	if err != nil {
		log.Fatal("error to recover knowledge from storage: ", err)
	}
	embedder := model.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.EmbeddingModel)
	chatAgent := agent.New(cfg.OpenAIKey, cfg.ChatModel)

	queue := make(chan parser.File, 1)
	go s.indexer(ctx, queue, chk, embedder, brain)
	go s.reindexUploaded(cfg.FilesDir, brain, queue)

	var (
		app           = fiber.New(config)
		checkHandler  = api.NewCheckHandler()
		queryHandler  = api.NewQueryHandler(brain, embedder, chatAgent)
		fileHandler   = api.NewFileHandler(brain, queue, cfg.FilesDir)
		configHandler = api.NewConfigHandler(cfg)
		check         = app.Group("/check")
		apiv1         = app.Group("/api/v1")
	)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	check.Get("/healthy", checkHandler.HandleHealthy)
	app.Post("/upload", fileHandler.HandleUpload)
	app.Get("/get_list", fileHandler.HandleList)
	app.Get("/ws", websocket.New(queryHandler.HandleQuery))
	apiv1.Get("/config", configHandler.HandleGetConfig)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

// reindexUploaded pushes files that were uploaded but never published onto
// the indexing queue. A file whose ingestion failed or was interrupted is
// still on disk and absent from the list, so it gets another pass here.
func (s *Server) reindexUploaded(filesDir string, brain *knowledge.Brain, queue chan<- parser.File) {
	entries, err := os.ReadDir(filesDir)
	if err != nil {
		s.logger.Error("error to read files dir", "error", err)
		return
	}
	indexed := brain.List()
	for _, entry := range entries {
		if entry.IsDir() || slices.Contains(indexed, entry.Name()) {
			continue
		}
		file, err := parser.Match(entry.Name(), "", filesDir+"/"+entry.Name())
		if err != nil {
			s.logger.Warn("skip unindexed file", "file", entry.Name(), "error", err)
			continue
		}
		queue <- file
		s.logger.Info("send re-index to indexer", "file", entry.Name())
	}
}
