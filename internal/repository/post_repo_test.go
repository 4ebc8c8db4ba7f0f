package repository

import (
	"Bulletin/internal/model"
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var errInjected = errors.New("injected failure")

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

// newTestDB 基于 sqlite 文件库建表并写入作者与标签
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

	require.NoError(t, db.Create(&model.User{
		ID:         1,
		Username:   strPtr("alice"),
		UserDetail: model.UserDetail{Nickname: "Alice", AvatarURL: "alice.png"},
	}).Error)
	require.NoError(t, db.Create(&[]model.Tag{
		{ID: 1, Name: "go"},
		{ID: 2, Name: "database"},
		{ID: 3, Name: "ops"},
	}).Error)
	return db
}

// failTagWrites 打开开关后，所有对 post_tags 的插入都会失败
func failTagWrites(t *testing.T, db *gorm.DB) *atomic.Bool {
	t.Helper()
	var on atomic.Bool
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_post_tags", func(tx *gorm.DB) {
		if on.Load() && tx.Statement.Table == "post_tags" {
			_ = tx.AddError(errInjected)
		}
	}))
	return &on
}

func tagIDs(tags []model.Tag) []uint64 {
	out := make([]uint64, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.ID)
	}
	return out
}

func countRows(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func newTextPost(title, body string) *model.Post {
	return &model.Post{AuthorID: 1, Kind: model.PostKindText, Title: title, Body: strPtr(body)}
}

func TestCreatePostTxText(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)

	post, err := repo.CreatePostTx(context.Background(), newTextPost("hello", "world"), []uint64{2, 1, 2})
	require.NoError(t, err)

	assert.NotZero(t, post.ID)
	assert.Equal(t, model.PostKindText, post.Kind)
	assert.Equal(t, "hello", post.Title)
	require.NotNil(t, post.Body)
	assert.Equal(t, "world", *post.Body)
	assert.Nil(t, post.AssetID)
	assert.Equal(t, []uint64{1, 2}, tagIDs(post.Tags))
	assert.Equal(t, "Alice", post.User.UserDetail.Nickname)
	assert.Equal(t, int64(2), countRows(t, db, &model.PostTag{}))
}

func TestCreatePostTxResource(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)

	in := &model.Post{
		AuthorID: 1,
		Kind:     model.PostKindResource,
		Title:    "photo",
		AssetID:  strPtr("image/1/cat_1_0a0b0c0d"),
		AssetURL: strPtr("https://cdn.example.com/image/1/cat_1_0a0b0c0d"),
		FileName: strPtr("cat.png"),
		ByteSize: int64Ptr(1024),
		MimeType: strPtr("image/png"),
	}
	post, err := repo.CreatePostTx(context.Background(), in, nil)
	require.NoError(t, err)

	require.NotNil(t, post.AssetID)
	assert.Equal(t, "image/1/cat_1_0a0b0c0d", *post.AssetID)
	assert.Equal(t, int64(1024), *post.ByteSize)
	assert.Nil(t, post.Body)
	assert.Empty(t, post.Tags)
}

func TestCreatePostTxRollsBackOnTagFailure(t *testing.T) {
	db := newTestDB(t)
	on := failTagWrites(t, db)
	repo := NewPostRepository(db)

	on.Store(true)
	_, err := repo.CreatePostTx(context.Background(), newTextPost("hello", "world"), []uint64{1})
	require.Error(t, err)

	var writeErr *WriteError
	assert.ErrorAs(t, err, &writeErr)
	assert.ErrorIs(t, err, errInjected)
	assert.Zero(t, countRows(t, db, &model.Post{}))
	assert.Zero(t, countRows(t, db, &model.PostTag{}))
}

func TestUpdatePostTxReplacesFieldsAndTags(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	created, err := repo.CreatePostTx(ctx, newTextPost("v1", "body v1"), []uint64{1, 2})
	require.NoError(t, err)

	updated, err := repo.UpdatePostTx(ctx, PostPatch{
		ID:    created.ID,
		Kind:  model.PostKindText,
		Title: "v2",
		Body:  strPtr("body v2"),
	}, []uint64{3})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "v2", updated.Title)
	assert.Equal(t, "body v2", *updated.Body)
	assert.Equal(t, []uint64{3}, tagIDs(updated.Tags))
	assert.Equal(t, int64(1), countRows(t, db, &model.PostTag{}))

	// 相同内容再次提交不应被误判为不存在
	again, err := repo.UpdatePostTx(ctx, PostPatch{
		ID:    created.ID,
		Kind:  model.PostKindText,
		Title: "v2",
		Body:  strPtr("body v2"),
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, again.Tags)
}

func TestUpdatePostTxResourceKeepsAsset(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	created, err := repo.CreatePostTx(ctx, &model.Post{
		AuthorID: 1,
		Kind:     model.PostKindResource,
		Title:    "doc",
		AssetID:  strPtr("raw/1/doc_1_00000001"),
		AssetURL: strPtr("https://cdn.example.com/raw/1/doc_1_00000001"),
		FileName: strPtr("doc.pdf"),
		ByteSize: int64Ptr(10),
		MimeType: strPtr("application/pdf"),
	}, nil)
	require.NoError(t, err)

	updated, err := repo.UpdatePostTx(ctx, PostPatch{
		ID:       created.ID,
		Kind:     model.PostKindResource,
		Title:    "doc v2",
		FileName: strPtr("report.pdf"),
	}, []uint64{1})
	require.NoError(t, err)

	assert.Equal(t, "doc v2", updated.Title)
	assert.Equal(t, "report.pdf", *updated.FileName)
	assert.Equal(t, "raw/1/doc_1_00000001", *updated.AssetID)
	assert.Equal(t, int64(10), *updated.ByteSize)
}

func TestUpdatePostTxNotFound(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	_, err := repo.UpdatePostTx(context.Background(), PostPatch{
		ID:    999,
		Kind:  model.PostKindText,
		Title: "x",
		Body:  strPtr("y"),
	}, []uint64{1})
	assert.ErrorIs(t, err, ErrNoRowAffected)
}

func TestUpdatePostTxVariantMismatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	created, err := repo.CreatePostTx(ctx, newTextPost("hello", "world"), []uint64{1})
	require.NoError(t, err)

	_, err = repo.UpdatePostTx(ctx, PostPatch{
		ID:       created.ID,
		Kind:     model.PostKindResource,
		Title:    "x",
		FileName: strPtr("a.png"),
	}, []uint64{2})
	assert.ErrorIs(t, err, ErrVariantMismatch)

	got, err := repo.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, []uint64{1}, tagIDs(got.Tags))
}

func TestUpdatePostTxRollsBackOnTagFailure(t *testing.T) {
	db := newTestDB(t)
	on := failTagWrites(t, db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	created, err := repo.CreatePostTx(ctx, newTextPost("v1", "body v1"), []uint64{1, 2})
	require.NoError(t, err)

	on.Store(true)
	_, err = repo.UpdatePostTx(ctx, PostPatch{
		ID:    created.ID,
		Kind:  model.PostKindText,
		Title: "v2",
		Body:  strPtr("body v2"),
	}, []uint64{3})
	require.Error(t, err)
	var writeErr *WriteError
	assert.ErrorAs(t, err, &writeErr)
	on.Store(false)

	got, err := repo.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Title)
	assert.Equal(t, "body v1", *got.Body)
	assert.Equal(t, []uint64{1, 2}, tagIDs(got.Tags))
}

func TestUpdatePostTxCanceledContext(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)

	created, err := repo.CreatePostTx(context.Background(), newTextPost("v1", "b"), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = repo.UpdatePostTx(ctx, PostPatch{ID: created.ID, Kind: model.PostKindText, Title: "v2", Body: strPtr("b")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := repo.GetPost(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Title)
}

func TestGetAndDeletePost(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	_, err := repo.GetPost(ctx, 42)
	assert.ErrorIs(t, err, ErrNoRowAffected)

	created, err := repo.CreatePostTx(ctx, newTextPost("bye", "soon"), []uint64{1, 3})
	require.NoError(t, err)

	deleted, err := repo.DeletePost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "bye", deleted.Title)
	assert.Zero(t, countRows(t, db, &model.PostTag{}))

	_, err = repo.GetPost(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNoRowAffected)

	_, err = repo.DeletePost(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNoRowAffected)
}

func TestUniqueTagIDs(t *testing.T) {
	assert.Nil(t, UniqueTagIDs(nil))
	assert.Equal(t, []uint64{3, 1, 2}, UniqueTagIDs([]uint64{3, 1, 3, 2, 1}))
}
