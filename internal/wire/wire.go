package wire

import (
	"Bulletin/internal/api"
	"Bulletin/internal/api/config"
	"Bulletin/internal/api/handler"
	"Bulletin/internal/pkg/asset"
	"Bulletin/internal/pkg/metrics"
	"Bulletin/internal/pkg/minio"
	"Bulletin/internal/pkg/s3"
	"Bulletin/internal/pkg/security"
	"Bulletin/internal/repository"
	"Bulletin/internal/service"
	"context"
	"fmt"
	log "log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 对象存储后端
const (
	ProviderMinIO  = "minio"
	ProviderS3     = "s3"
	ProviderMemory = "memory"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Store  asset.Store
}

func BuildApplication(ctx context.Context, db *gorm.DB, rdb *redis.Client, cfg *config.Config) (*ApplicationContainer, error) {
	store, err := NewAssetStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	tm, err := security.NewTokenManager(cfg.JWT)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	publishMetrics, err := metrics.NewPublishMetrics(registry)
	if err != nil {
		return nil, err
	}

	postRepo := repository.NewPostRepository(db)

	// 未配置 Redis 时补偿失败只写日志，也不检查 Token 注销
	var orphans service.OrphanRecorder
	var revoked redis.Cmdable
	if rdb != nil {
		orphans = repository.NewOrphanAssetRepository(rdb)
		revoked = rdb
	}

	postService := service.NewPostService(store, postRepo, orphans, publishMetrics, cfg.Publish)

	handlers := &api.HandlersGroup{
		PostHandler: handler.NewPostHandler(postService, cfg.Publish.MaxUploadSize),
	}

	router := api.SetupRouter(handlers, api.RouterDeps{
		Server:       cfg.Server,
		TokenManager: tm,
		Redis:        revoked,
		Gatherer:     registry,
	})

	return &ApplicationContainer{
		Router: router,
		DB:     db,
		Redis:  rdb,
		Store:  store,
	}, nil
}

// NewAssetStore 按配置选择对象存储后端
func NewAssetStore(ctx context.Context, cfg config.StorageConfig) (asset.Store, error) {
	switch cfg.Provider {
	case ProviderMinIO:
		store, err := minio.NewStore(ctx, cfg.MinIO, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case ProviderS3:
		store, err := s3.NewStore(ctx, cfg.S3, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case ProviderMemory:
		log.Warn("Using in-memory asset store, uploads are lost on restart")
		return asset.NewMemoryStore(asset.NewLocator(cfg.PublicBaseURL, "")), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
