package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"omniq/internal/db"
	"omniq/internal/handlers"
	"omniq/internal/repositories"
	"omniq/internal/routes"
	"omniq/internal/services"
	"omniq/internal/ws"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewServer() *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)
	addr := getenv("SERVER_ADDR", ":8080")

	// Shared infrastructure clients
	redisClient := initializeRedis(logger)
	chromaClient := initializeChroma(logger)
	blobRepo := initializeBlobRepository(logger, addr)

	vectorRepo := repositories.NewChromaVectorRepository(chromaClient)
	consumerRepo := repositories.NewRedisConsumerRepository(redisClient.GetClient())

	// Model endpoint
	llm := services.NewLLMService(getLLMConfig())

	// Services
	tokenService := services.NewTokenService(
		consumerRepo,
		[]byte(mustGetenv(logger, "JWT_SIGNING_KEY")),
		getTokenExpiry(),
		getenv("STREAM_BASE_URL", "ws://localhost:8080/api/v1/directline"),
		logger,
	)
	retriever := services.NewRetrievalService(llm, vectorRepo, os.Getenv("VECTOR_COLLECTION"), logger)
	chatService := services.NewChatService(retriever, llm, blobRepo, logger)
	documentService := services.NewDocumentService(blobRepo, logger)

	// Handlers
	h := &routes.Handlers{
		Health:       handlers.HealthCheckHandler,
		Home:         handlers.HomeHandler,
		Token:        handlers.NewTokenHandler(tokenService, logger),
		Chat:         handlers.NewChatHandler(chatService, logger),
		Document:     handlers.NewDocumentHandler(documentService, logger),
		Stream:       handlers.NewStreamHandler(ws.NewConnectionManager(), tokenService, logger),
		TokenService: tokenService,
		Logger:       logger,
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost"+addr+"/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	return &http.Server{
		Addr:    addr,
		Handler: corsMiddleware(router),
	}
}

// initializeRedis connects the consumer/conversation store
func initializeRedis(logger *log.Logger) *db.RedisClient {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config := getRedisConfig()
	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", config.Host, config.Port, config.DB)

	client, err := db.NewRedisClient(config)
	if err != nil {
		logger.Fatalf("Failed to create Redis client: %v", err)
	}
	if err := client.Ping(ctx); err != nil {
		logger.Fatalf("Redis connection failed: %v (hint: docker run -d -p 6379:6379 redis:7-alpine)", err)
	}
	logger.Println("Redis connected successfully")
	return client
}

// initializeChroma connects the vector index
func initializeChroma(logger *log.Logger) *db.ChromaDBClient {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config := getChromaConfig()
	logger.Printf("Connecting to ChromaDB: %s:%d", config.Host, config.Port)

	client := db.NewChromaDBClient(config)
	if err := client.Heartbeat(ctx); err != nil {
		logger.Fatalf("ChromaDB connection failed: %v (hint: docker run -d -p 8000:8000 chromadb/chroma)", err)
	}
	logger.Println("ChromaDB connected successfully")
	return client
}

// initializeBlobRepository opens the local blob store
func initializeBlobRepository(logger *log.Logger, addr string) repositories.BlobRepository {
	dir := getenv("BLOB_DIR", "./data/blobs")
	baseURL := getenv("CONTENT_BASE_URL", "http://localhost"+addr+"/api/v1/content")
	key := mustGetenv(logger, "BLOB_SIGNING_KEY")

	repo, err := repositories.NewLocalBlobRepository(dir, baseURL, []byte(key))
	if err != nil {
		logger.Fatalf("Failed to open blob store: %v", err)
	}
	logger.Printf("Blob store ready at %s", dir)
	return repo
}

// getRedisConfig reads Redis configuration from environment variables
func getRedisConfig() db.RedisConfig {
	config := db.DefaultRedisConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbNum, err := strconv.Atoi(dbStr); err == nil {
			config.DB = dbNum
		}
	}

	return config
}

// getChromaConfig reads ChromaDB configuration from environment variables
func getChromaConfig() db.ChromaDBConfig {
	config := db.ChromaDBConfig{
		Host:    "localhost",
		Port:    8000,
		Timeout: 30 * time.Second,
	}

	if host := os.Getenv("CHROMA_HOST"); host != "" {
		config.Host = host
	}
	if portStr := os.Getenv("CHROMA_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}
	if tenant := os.Getenv("CHROMA_TENANT"); tenant != "" {
		config.Tenant = tenant
	}
	if database := os.Getenv("CHROMA_DATABASE"); database != "" {
		config.Database = database
	}

	return config
}

// getLLMConfig reads model endpoint configuration from environment variables
func getLLMConfig() services.LLMConfig {
	return services.LLMConfig{
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		BaseURL:        os.Getenv("OPENAI_BASE_URL"),
		ChatModel:      os.Getenv("OPENAI_CHAT_MODEL"),
		EmbeddingModel: os.Getenv("OPENAI_EMBEDDING_MODEL"),
		Timeout:        120 * time.Second, // LLMs can be slow
	}
}

func getTokenExpiry() time.Duration {
	if minutesStr := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); minutesStr != "" {
		if minutes, err := strconv.Atoi(minutesStr); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return services.DefaultTokenExpiry
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustGetenv(logger *log.Logger, key string) string {
	value := os.Getenv(key)
	if value == "" {
		logger.Fatalf("%s must be set", key)
	}
	return value
}
