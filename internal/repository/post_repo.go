package repository

import (
	"Bulletin/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostPatch 更新时可变的字段，按 Kind 选择 Body 或 FileName
type PostPatch struct {
	ID       uint64
	Kind     string
	Title    string
	Body     *string
	FileName *string
}

type PostRepo interface {
	CreatePostTx(ctx context.Context, post *model.Post, tagIDs []uint64) (*model.Post, error)
	UpdatePostTx(ctx context.Context, patch PostPatch, tagIDs []uint64) (*model.Post, error)
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	DeletePost(ctx context.Context, id uint64) (*model.Post, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

// CreatePostTx 单事务内写入帖子、标签关联并回读
func (s *PostRepoImpl) CreatePostTx(ctx context.Context, post *model.Post, tagIDs []uint64) (*model.Post, error) {
	var out *model.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if err := insertPostTags(tx, post.ID, tagIDs); err != nil {
			return err
		}
		loaded, err := loadPost(tx, post.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyResult
			}
			return err
		}
		out = loaded
		return nil
	})
	if err != nil {
		return nil, wrapWrite("create post tx", err)
	}
	if out == nil {
		return nil, wrapWrite("create post tx", ErrEmptyResult)
	}
	return out, nil
}

// UpdatePostTx 单事务内更新字段、整体替换标签关联（先删后插）并回读
func (s *PostRepoImpl) UpdatePostTx(ctx context.Context, patch PostPatch, tagIDs []uint64) (*model.Post, error) {
	var out *model.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"title":      patch.Title,
			"updated_at": time.Now(),
		}
		switch patch.Kind {
		case model.PostKindText:
			updates["body"] = patch.Body
		case model.PostKindResource:
			updates["file_name"] = patch.FileName
		}

		res := tx.Model(&model.Post{}).
			Where("id = ? AND kind = ?", patch.ID, patch.Kind).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// MySQL 默认只统计实际变化的行，需要再确认一次
			var kinds []string
			if err := tx.Model(&model.Post{}).Where("id = ?", patch.ID).Pluck("kind", &kinds).Error; err != nil {
				return err
			}
			if len(kinds) == 0 {
				return ErrNoRowAffected
			}
			if kinds[0] != patch.Kind {
				return ErrVariantMismatch
			}
		}

		if err := tx.Where("post_id = ?", patch.ID).Delete(&model.PostTag{}).Error; err != nil {
			return err
		}
		if err := insertPostTags(tx, patch.ID, tagIDs); err != nil {
			return err
		}

		loaded, err := loadPost(tx, patch.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoRowAffected
			}
			return err
		}
		out = loaded
		return nil
	})
	if err != nil {
		return nil, wrapWrite("update post tx", err)
	}
	return out, nil
}

// GetPost 读取帖子及作者、标签
func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := loadPost(s.db.WithContext(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoRowAffected
		}
		return nil, err
	}
	return post, nil
}

// DeletePost 删除帖子及其标签关联，返回被删除的记录供调用方清理附件
func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) (*model.Post, error) {
	var deleted model.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoRowAffected
			}
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoRowAffected
		}
		return nil
	})
	if err != nil {
		return nil, wrapWrite("delete post tx", err)
	}
	return &deleted, nil
}

func insertPostTags(tx *gorm.DB, postID uint64, tagIDs []uint64) error {
	ids := UniqueTagIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}
	links := make([]model.PostTag, 0, len(ids))
	for _, tagID := range ids {
		links = append(links, model.PostTag{PostID: postID, TagID: tagID})
	}
	return tx.Create(&links).Error
}

func loadPost(db *gorm.DB, id uint64) (*model.Post, error) {
	var post model.Post
	err := db.
		Preload("User.UserDetail").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id")
		}).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UniqueTagIDs 去重并保持首次出现的顺序
func UniqueTagIDs(tagIDs []uint64) []uint64 {
	if len(tagIDs) == 0 {
		return nil
	}
	seen := make(map[uint64]struct{}, len(tagIDs))
	out := make([]uint64, 0, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
