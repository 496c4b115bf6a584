package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"ResuMatch/internal/config"
	"ResuMatch/internal/database/kafka"
	"ResuMatch/internal/database/milvus"
	"ResuMatch/internal/database/minio"
	mongodb "ResuMatch/internal/database/mongo"
	"ResuMatch/internal/database/mysql"
	"ResuMatch/internal/database/neo4j"
	redisdb "ResuMatch/internal/database/redis"
	"ResuMatch/internal/embedding"
	"ResuMatch/internal/extractor"
	"ResuMatch/internal/llm"
	"ResuMatch/internal/matcher"
	"ResuMatch/internal/matcher_service/service"
	"ResuMatch/internal/matcher_service/store"
	"ResuMatch/internal/profile"
	"ResuMatch/pkg/circuitbreaker"
	"ResuMatch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	transport := flag.String("transport", "stdio", "Transport method: stdio, sse, or httpstream")
	port := flag.String("port", "8082", "Port for HTTP-based transports (sse, httpstream)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	// The stdio transport owns stdout, so logs must go to stderr.
	logrus.SetOutput(os.Stderr)
	appLogger := logger.New("matcher_mcp", "")

	svc, extr, err := buildService(cfg, appLogger)
	if err != nil {
		log.Fatalf("failed to build matcher service: %v", err)
	}

	h := &matcherHandler{svc: svc, extractor: extr}

	s := server.NewMCPServer("resumatch", cfg.App.Version)

	s.AddTool(mcp.NewTool("match_resumes",
		mcp.WithDescription("Matches a batch of resume files against a job description. The files are indexed into temporary collections that are dropped afterwards."),
		mcp.WithString("job_description_path", mcp.Required(), mcp.Description("Path to the job description file (txt, pdf, docx or html).")),
		mcp.WithString("resumes_dir", mcp.Required(), mcp.Description("Directory holding only the resume files to match.")),
		mcp.WithNumber("top_k", mcp.Description("Number of section hits to retrieve before ranking.")),
		mcp.WithNumber("min_similarity", mcp.Description("Similarity floor in [0,1]; hits below it are dropped.")),
	), h.handleMatchResumes)

	s.AddTool(mcp.NewTool("match_stored",
		mcp.WithDescription("Matches a job description against the resumes already in the persistent index."),
		mcp.WithString("job_description_path", mcp.Required(), mcp.Description("Path to the job description file.")),
		mcp.WithNumber("top_k", mcp.Description("Number of section hits to retrieve before ranking.")),
		mcp.WithNumber("min_similarity", mcp.Description("Similarity floor in [0,1]; hits below it are dropped.")),
	), h.handleMatchStored)

	s.AddTool(mcp.NewTool("index_directory",
		mcp.WithDescription("Indexes every supported file in a directory into the persistent resume index."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to index.")),
	), h.handleIndexDirectory)

	s.AddTool(mcp.NewTool("store_status",
		mcp.WithDescription("Reports the service status: indexed resume count, enabled capabilities and backing store health."),
	), h.handleStoreStatus)

	switch *transport {
	case "sse":
		log.Printf("Starting matcher MCP server with SSE transport on port %s", *port)
		sseServer := server.NewSSEServer(s)
		if err := sseServer.Start(":" + *port); err != nil {
			log.Fatalf("SSE server error: %v", err)
		}
	case "httpstream":
		log.Printf("Starting matcher MCP server with StreamableHTTP transport on port %s", *port)
		httpServer := server.NewStreamableHTTPServer(s)
		if err := httpServer.Start(":" + *port); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case "stdio":
		log.Println("Starting matcher MCP server with STDIO transport")
		if err := server.ServeStdio(s); err != nil {
			log.Fatalf("STDIO server error: %v", err)
		}
	default:
		log.Fatalf("Unknown transport: %s. Use stdio, sse, or httpstream", *transport)
	}
}

// buildService wires the same service layer the HTTP binary serves, minus the
// servers and the etcd registration a local tool process has no use for.
func buildService(cfg *config.AppConfig, appLogger *logger.Logger) (*service.Service, *extractor.Router, error) {
	ctx := context.Background()

	milvusClient, err := milvus.NewClient(ctx, cfg.Databases.Milvus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Milvus: %w", err)
	}

	health := map[string]service.HealthCheck{
		"milvus": milvusClient.HealthCheck,
	}

	embedModel, err := embedding.NewEmdModel(cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.APIKey, cfg.Embedding.BaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding model: %w", err)
	}

	var cacheTTL time.Duration
	if cfg.Embedding.CacheTTL != "" {
		cacheTTL, err = time.ParseDuration(cfg.Embedding.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid embedding cacheTTL: %w", err)
		}
	}

	var rdb *redis.Client
	if cfg.Databases.Redis.Enabled {
		redisClient, err := redisdb.NewClient(ctx, cfg.Databases.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		rdb = redisClient.RDB
		health["redis"] = redisClient.HealthCheck
	}

	encoder, err := embedding.NewCachedModel(embedModel, cfg.Embedding.Model, rdb, cacheTTL, appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	breaker := circuitbreaker.New(3, 1, 30*time.Second)
	if cfg.Middleware.CircuitBreaker.Enabled {
		timeout, err := time.ParseDuration(cfg.Middleware.CircuitBreaker.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid circuit breaker timeout: %w", err)
		}
		breaker = circuitbreaker.New(cfg.Middleware.CircuitBreaker.FailureThreshold, cfg.Middleware.CircuitBreaker.SuccessThreshold, timeout)
	}

	mainStore, err := matcher.NewMilvusStore(milvusClient, cfg.Matcher.Collections, cfg.Embedding.Dim, cfg.Matcher.Index, appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	if err := mainStore.EnsureCollections(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare collections: %w", err)
	}

	extr := extractor.NewRouter()

	deps := service.Dependencies{
		Config:     cfg,
		Log:        appLogger,
		Extractor:  extr,
		Encoder:    encoder,
		Store:      mainStore,
		Summarizer: service.NewSummarizer(llmClient, cfg.LLM.Model, breaker, appLogger),
		TempStores: func(documents, sections string) (matcher.EphemeralStore, error) {
			collections := config.CollectionsConfig{Documents: documents, Sections: sections}
			return matcher.NewMilvusStore(milvusClient, collections, cfg.Embedding.Dim, cfg.Matcher.Index, appLogger)
		},
		Health: health,
	}

	// Indexing through a tool call carries the same side effects as the HTTP
	// surface, so the optional stores are wired here too.
	if cfg.Databases.MySQL.Enabled {
		mysqlClient, err := mysql.NewClient(cfg.Databases.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		catalog, err := profile.NewCatalog(mysqlClient)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create candidate catalog: %w", err)
		}
		deps.Catalog = catalog
		health["mysql"] = mysqlClient.HealthCheck
	}

	if cfg.Databases.Neo4j.Enabled {
		neo4jClient, err := neo4j.NewClient(ctx, cfg.Databases.Neo4j)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
		}
		graph, err := profile.NewGraph(neo4jClient)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create skill graph: %w", err)
		}
		deps.Graph = graph
		health["neo4j"] = neo4jClient.HealthCheck
	}

	if cfg.Databases.MongoDB.Enabled {
		mongoClient, err := mongodb.NewClient(ctx, cfg.Databases.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		history, err := store.NewMongoHistoryStore(mongoClient)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create history store: %w", err)
		}
		deps.History = history
		health["mongodb"] = mongoClient.HealthCheck
	}

	if cfg.Databases.MinIO.Enabled {
		minioClient, err := minio.NewClient(ctx, cfg.Databases.MinIO)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		deps.Uploader = minioClient
		health["minio"] = minioClient.HealthCheck
	}

	if cfg.Databases.Kafka.Enabled {
		kafkaClient, err := kafka.NewClient(cfg.Databases.Kafka)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Kafka: %w", err)
		}
		events, err := kafka.NewIndexEventPublisher(kafkaClient)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create index event publisher: %w", err)
		}
		deps.Events = events
		health["kafka"] = kafkaClient.HealthCheck
	}

	svc, err := service.New(deps)
	if err != nil {
		return nil, nil, err
	}
	return svc, extr, nil
}

// matcherHandler handles all matcher tool requests.
type matcherHandler struct {
	svc       *service.Service
	extractor *extractor.Router
}

func (h *matcherHandler) handleMatchResumes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobPath, err := req.RequireString("job_description_path")
	if err != nil {
		return nil, err
	}
	resumesDir, err := req.RequireString("resumes_dir")
	if err != nil {
		return nil, err
	}
	topK := int(req.GetFloat("top_k", 0))
	minSimilarity := req.GetFloat("min_similarity", 0)

	resp, err := h.svc.MatchUploaded(ctx, jobPath, resumesDir, topK, minSimilarity)
	if err != nil {
		return toolError(fmt.Sprintf("matching failed: %v", err)), nil
	}
	return toolJSON(resp)
}

func (h *matcherHandler) handleMatchStored(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobPath, err := req.RequireString("job_description_path")
	if err != nil {
		return nil, err
	}
	topK := int(req.GetFloat("top_k", 0))
	minSimilarity := req.GetFloat("min_similarity", 0)

	jobText, err := h.extractor.Extract(ctx, jobPath)
	if err != nil {
		return toolError(fmt.Sprintf("failed to read job description: %v", err)), nil
	}

	resp, err := h.svc.MatchStored(ctx, jobText, topK, minSimilarity)
	if err != nil {
		return toolError(fmt.Sprintf("matching failed: %v", err)), nil
	}
	return toolJSON(resp)
}

func (h *matcherHandler) handleIndexDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, err
	}

	resp, err := h.svc.IndexDirectory(ctx, path)
	if err != nil {
		return toolError(fmt.Sprintf("indexing failed: %v", err)), nil
	}
	return toolJSON(resp)
}

func (h *matcherHandler) handleStoreStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolJSON(h.svc.Status(ctx))
}

// toolJSON renders a result value as an indented JSON text block.
func toolJSON(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(data)}},
	}, nil
}

func toolError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: message}},
		IsError: true,
	}
}
