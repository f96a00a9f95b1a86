package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pdf-rag/internal/models"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	OpenAI   LLMConfig      `yaml:"openai"`
	Ollama   LLMConfig      `yaml:"ollama"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Vector   VectorConfig   `yaml:"vector"`
	RAG      RAGConfig      `yaml:"rag"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	UploadDir string `yaml:"upload_dir"`
}

type LLMConfig struct {
	Key            string  `yaml:"key"`
	BaseURL        string  `yaml:"base_url"`
	EmbeddingModel string  `yaml:"embedding_model"`
	InferenceModel string  `yaml:"inference_model"`
	Temperature    float64 `yaml:"temperature"`
}

type SupabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type VectorConfig struct {
	Backend    string `yaml:"backend"` // "postgres" or "chromem"
	ChromemDir string `yaml:"chromem_dir"`
	Collection string `yaml:"collection"`
	Dimension  int    `yaml:"dimension"`
}

type RAGConfig struct {
	ChunkSize       int    `yaml:"chunk_size"`
	ChunkOverlap    int    `yaml:"chunk_overlap"`
	TopK            int    `yaml:"top_k"`
	InsertBatchSize int    `yaml:"insert_batch_size"`
	PromptTemplate  string `yaml:"prompt_template"`

	EmbedTimeoutSeconds    int `yaml:"embed_timeout_seconds"`
	GenerateTimeoutSeconds int `yaml:"generate_timeout_seconds"`
	IngestTimeoutSeconds   int `yaml:"ingest_timeout_seconds"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	APIBase  string `yaml:"api_base"`
}

// LoadConfig reads the YAML config at path and applies environment
// overrides for secrets. A missing .env file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrideEnv(&c.OpenAI.Key, "OPENAI_API_KEY")
	overrideEnv(&c.Supabase.URL, "SUPABASE_URL")
	overrideEnv(&c.Supabase.Key, "SUPABASE_SERVICE_KEY")
	overrideEnv(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	overrideEnv(&c.Server.Port, "APP_PORT")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = "uploads"
	}
	if c.Vector.Backend == "" {
		c.Vector.Backend = "postgres"
	}
	if c.Vector.Collection == "" {
		c.Vector.Collection = "documents"
	}
	if c.Vector.Dimension == 0 {
		c.Vector.Dimension = 1536
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = models.DefaultChunkSize
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = models.DefaultChunkOverlap
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = models.DefaultTopK
	}
	if c.RAG.InsertBatchSize == 0 {
		c.RAG.InsertBatchSize = models.DefaultInsertBatch
	}
	if c.RAG.PromptTemplate == "" {
		c.RAG.PromptTemplate = models.AnswerPromptTemplate
	}
	if c.RAG.EmbedTimeoutSeconds == 0 {
		c.RAG.EmbedTimeoutSeconds = 30
	}
	if c.RAG.GenerateTimeoutSeconds == 0 {
		c.RAG.GenerateTimeoutSeconds = 60
	}
	if c.RAG.IngestTimeoutSeconds == 0 {
		c.RAG.IngestTimeoutSeconds = 120
	}
	if c.Telegram.APIBase == "" {
		c.Telegram.APIBase = "https://api.telegram.org"
	}
}

func (c *RAGConfig) EmbedTimeout() time.Duration {
	return time.Duration(c.EmbedTimeoutSeconds) * time.Second
}

func (c *RAGConfig) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutSeconds) * time.Second
}

func (c *RAGConfig) IngestTimeout() time.Duration {
	return time.Duration(c.IngestTimeoutSeconds) * time.Second
}

func overrideEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
