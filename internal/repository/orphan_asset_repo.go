package repository

import (
	"Bulletin/internal/pkg/consts"
	rdbutil "Bulletin/internal/pkg/redis"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OrphanAsset 补偿删除失败、可能已成为孤儿的附件
type OrphanAsset struct {
	AssetID    string    `json:"asset_id"`
	Op         string    `json:"op"`
	Reason     string    `json:"reason"`
	RecordedAt time.Time `json:"recorded_at"`
}

// OrphanAssetRepo 孤儿附件登记，仅用于观测与人工核对
type OrphanAssetRepo interface {
	Record(ctx context.Context, orphan OrphanAsset) error
	Get(ctx context.Context, assetID string) (*OrphanAsset, error)
	Count(ctx context.Context) (int64, error)
}

type OrphanAssetRepoImpl struct {
	rdb redis.Cmdable
}

func NewOrphanAssetRepository(rdb redis.Cmdable) OrphanAssetRepo {
	return &OrphanAssetRepoImpl{rdb: rdb}
}

func (s *OrphanAssetRepoImpl) Record(ctx context.Context, orphan OrphanAsset) error {
	if orphan.RecordedAt.IsZero() {
		orphan.RecordedAt = time.Now()
	}
	return rdbutil.HSetJSON(ctx, s.rdb, consts.AssetOrphanKey, orphan.AssetID, orphan)
}

// Get 不存在时返回 nil, nil
func (s *OrphanAssetRepoImpl) Get(ctx context.Context, assetID string) (*OrphanAsset, error) {
	var orphan OrphanAsset
	ok, err := rdbutil.HGetJSON(ctx, s.rdb, consts.AssetOrphanKey, assetID, &orphan)
	if err != nil || !ok {
		return nil, err
	}
	return &orphan, nil
}

func (s *OrphanAssetRepoImpl) Count(ctx context.Context) (int64, error) {
	return s.rdb.HLen(ctx, consts.AssetOrphanKey).Result()
}
