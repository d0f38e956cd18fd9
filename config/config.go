package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every connection string, key and tuning knob the service
// needs. All values come from the environment (optionally seeded from a
// .env file); missing required values are a startup failure.
type Config struct {
	Port string

	// DocumentsDir is the local store the legislative PDFs are served from.
	DocumentsDir string
	// WatchDocuments enables re-indexing when files in DocumentsDir change.
	WatchDocuments bool

	ChromaURL        string
	ChromaCollection string

	SQLitePath string

	OllamaURL  string
	EmbedModel string

	GeminiAPIKey string
	GeminiModel  string

	UnidocLicenseKey string

	ChunkWindow      int
	ChunkOverlap     int
	MaxDocumentBytes int
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DocumentsDir:     getEnv("DOCUMENTS_DIR", "./documents"),
		WatchDocuments:   getEnv("WATCH_DOCUMENTS", "true") == "true",
		ChromaURL:        getEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaCollection: getEnv("CHROMA_COLLECTION", "legislative-chunks"),
		SQLitePath:       getEnv("SQLITE_PATH", "legisrag.db"),
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:       getEnv("EMBED_MODEL", "nomic-embed-text:v1.5"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		UnidocLicenseKey: os.Getenv("UNIDOC_LICENSE_KEY"),
	}

	var err error
	if cfg.ChunkWindow, err = getEnvInt("CHUNK_WINDOW", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 200); err != nil {
		return nil, err
	}
	if cfg.MaxDocumentBytes, err = getEnvInt("MAX_DOCUMENT_BYTES", 1<<20); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if c.ChunkWindow <= 0 {
		return fmt.Errorf("CHUNK_WINDOW must be positive, got %d", c.ChunkWindow)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkWindow {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_WINDOW (%d)", c.ChunkOverlap, c.ChunkWindow)
	}
	if c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("MAX_DOCUMENT_BYTES must be positive, got %d", c.MaxDocumentBytes)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
