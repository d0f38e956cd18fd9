package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github/niyamr/legisrag/config"
	"github/niyamr/legisrag/controller"
	"github/niyamr/legisrag/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	if err := services.SetupPDFLicense(cfg.UnidocLicenseKey); err != nil {
		log.Printf("WARN: %v. PDF extraction will fail until UNIDOC_LICENSE_KEY is set.", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	collection, err := services.GetOrCreateCollection(context.Background(), chromaClient, cfg.ChromaCollection)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}
	log.Printf("Connected to Chroma collection %q", cfg.ChromaCollection)

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	store, err := services.NewSQLiteChunkStore(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to open chunk store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: Failed to close chunk store: %v", err)
		}
	}()

	blobs, err := services.NewFileBlobStore(cfg.DocumentsDir)
	if err != nil {
		log.Fatalf("FATAL: Failed to open documents directory: %v", err)
	}

	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaURL, cfg.EmbedModel)
	index := services.NewChromaIndex(collection)
	generator := services.NewGeminiGenerator(geminiClient, cfg.GeminiModel)

	indexing := services.NewIndexingService(blobs, embedder, index, store, cfg.ChunkWindow, cfg.ChunkOverlap, cfg.MaxDocumentBytes)
	retriever := services.NewRetriever(embedder, index, store)
	analyzer := services.NewAnalyzer(generator, store)
	analyzerController := controller.NewAnalyzerController(indexing, retriever, analyzer)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if cfg.WatchDocuments {
		go indexing.WatchDirectory(watchCtx, blobs.Dir)
	}

	router := gin.Default()

	// CORS for the browser UI.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := router.Group("/api")
	{
		api.GET("/health", analyzerController.Health)
		api.POST("/extract-text", analyzerController.ExtractText)
		api.POST("/summarize", analyzerController.Summarize)
		api.POST("/extract-sections", analyzerController.ExtractSections)
		api.POST("/check-rules", analyzerController.CheckRules)
		api.POST("/search", analyzerController.Search)
	}

	log.Printf("Legislative analysis server starting on http://localhost:%s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/api/health", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
