package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"resumecrack-backend/internal/ident"
	"resumecrack-backend/internal/llm"
	"resumecrack-backend/internal/llm/gemini"
	"resumecrack-backend/internal/llm/openai"
	"resumecrack-backend/internal/raster"
	"resumecrack-backend/internal/resumes"
	"resumecrack-backend/internal/shared/config"
	"resumecrack-backend/internal/shared/metrics"
	"resumecrack-backend/internal/shared/server/middleware"
	"resumecrack-backend/internal/shared/server/respond"
	"resumecrack-backend/internal/shared/storage/db"
	"resumecrack-backend/internal/shared/storage/kv"
	"resumecrack-backend/internal/shared/storage/object"
	localstore "resumecrack-backend/internal/shared/storage/object/local"
	s3store "resumecrack-backend/internal/shared/storage/object/s3"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	objects := newObjectStore(cfg)
	kvStore := newKVStore(cfg)
	records := resumes.NewStore(kvStore)
	rasterizer := raster.NewPopplerRasterizer(cfg.PdftoppmPath)
	client := newLLMClient(cfg)

	pipeline := resumes.NewPipeline(objects, records, rasterizer, client, ident.NewUUID)
	wiper := resumes.NewWiper(objects, records)
	handler := resumes.NewHandler(pipeline, records, objects, wiper)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	authed := api.Group("")
	authed.Use(middleware.Identity())
	handler.RegisterRoutes(authed)

	return r
}

func newObjectStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			log.Printf("failed to initialize s3 store, falling back to local: %v", err)
		} else {
			return store
		}
	}
	return localstore.New(cfg.LocalStoreDir)
}

func newKVStore(cfg config.Config) kv.Store {
	if cfg.DatabaseURL == "" {
		return kv.NewMemoryStore()
	}

	var sqlDB *sql.DB
	dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
	} else {
		if err := db.RunMigrations(context.Background(), dbConn); err != nil {
			log.Printf("failed to run migrations, falling back to memory: %v", err)
			dbConn.Close()
			dbConn = nil
		}
		sqlDB = dbConn
	}
	if sqlDB == nil {
		return kv.NewMemoryStore()
	}
	return &kv.PGStore{DB: sqlDB}
}

func newLLMClient(cfg config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
		if err != nil {
			log.Printf("openai client unavailable, using placeholder: %v", err)
			return llm.PlaceholderClient{}
		}
		return client
	case "gemini":
		client, err := gemini.NewClient(context.Background(), os.Getenv("GEMINI_API_KEY"), cfg.LLMModel)
		if err != nil {
			log.Printf("gemini client unavailable, using placeholder: %v", err)
			return llm.PlaceholderClient{}
		}
		return client
	default:
		return llm.PlaceholderClient{}
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
