package service

import (
	"Bulletin/internal/api/config"
	"Bulletin/internal/model"
	"Bulletin/internal/pkg/asset"
	"Bulletin/internal/repository"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testBaseURL = "https://cdn.example.com"

var testPublishConfig = config.PublishConfig{
	UploadTimeout:       time.Second,
	WriteTimeout:        time.Second,
	CompensationTimeout: time.Second,
	MaxUploadSize:       1 << 20,
	MaxTags:             10,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bulletin.db")), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.UserDetail{}, &model.Tag{}, &model.Post{}, &model.PostTag{}))

	username := "alice"
	require.NoError(t, db.Create(&model.User{
		ID:         1,
		Username:   &username,
		UserDetail: model.UserDetail{Nickname: "Alice", AvatarURL: "alice.png"},
	}).Error)
	require.NoError(t, db.Create(&[]model.Tag{
		{ID: 1, Name: "go"},
		{ID: 2, Name: "database"},
		{ID: 3, Name: "ops"},
	}).Error)
	return db
}

// fakeStore 在内存存储外记录调用并可注入失败
type fakeStore struct {
	*asset.MemoryStore

	mu           sync.Mutex
	uploadErr    error
	deleteErr    error
	uploads      int
	deletes      []string
	deleteCtxErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{MemoryStore: asset.NewMemoryStore(asset.NewLocator(testBaseURL, ""))}
}

func (f *fakeStore) Upload(ctx context.Context, req asset.UploadRequest) (*asset.Asset, error) {
	f.mu.Lock()
	f.uploads++
	err := f.uploadErr
	f.mu.Unlock()
	if err != nil {
		return nil, &asset.OpError{Op: asset.OpUpload, Err: err}
	}
	return f.MemoryStore.Upload(ctx, req)
}

func (f *fakeStore) Delete(ctx context.Context, assetID string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, assetID)
	f.deleteCtxErr = ctx.Err()
	err := f.deleteErr
	f.mu.Unlock()
	if err != nil {
		return &asset.OpError{Op: asset.OpDelete, Key: assetID, Err: err}
	}
	return f.MemoryStore.Delete(ctx, assetID)
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads + len(f.deletes)
}

// stubRepo 默认转发给真实仓储，createFn 可替换创建事务
type stubRepo struct {
	repository.PostRepo

	createFn    func(ctx context.Context, post *model.Post, tagIDs []uint64) (*model.Post, error)
	createCalls int
}

func (r *stubRepo) CreatePostTx(ctx context.Context, post *model.Post, tagIDs []uint64) (*model.Post, error) {
	r.createCalls++
	if r.createFn != nil {
		return r.createFn(ctx, post, tagIDs)
	}
	return r.PostRepo.CreatePostTx(ctx, post, tagIDs)
}

type fakeOrphans struct {
	mu      sync.Mutex
	records []repository.OrphanAsset
}

func (f *fakeOrphans) Record(_ context.Context, orphan repository.OrphanAsset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, orphan)
	return nil
}
