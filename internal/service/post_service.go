package service

import (
	"Bulletin/internal/api/config"
	"Bulletin/internal/api/dto"
	"Bulletin/internal/model"
	"Bulletin/internal/pkg/asset"
	"Bulletin/internal/pkg/metrics"
	"Bulletin/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// OrphanRecorder 登记补偿失败的附件
type OrphanRecorder interface {
	Record(ctx context.Context, orphan repository.OrphanAsset) error
}

type PostService interface {
	CreatePost(ctx context.Context, input PostInput, authorID uint64) (*dto.PostDTO, error)
	UpdatePost(ctx context.Context, postID uint64, update PostUpdate) (*dto.PostDTO, error)
	GetPost(ctx context.Context, postID uint64) (*dto.PostDTO, error)
	DeletePost(ctx context.Context, postID uint64) error
}

type postServiceImpl struct {
	store    asset.Store
	postRepo repository.PostRepo
	orphans  OrphanRecorder
	metrics  *metrics.PublishMetrics
	cfg      config.PublishConfig
}

// NewPostService orphans 与 m 可为 nil
func NewPostService(store asset.Store, postRepo repository.PostRepo, orphans OrphanRecorder, m *metrics.PublishMetrics, cfg config.PublishConfig) PostService {
	return &postServiceImpl{
		store:    store,
		postRepo: postRepo,
		orphans:  orphans,
		metrics:  m,
		cfg:      cfg,
	}
}

// CreatePost 发帖：先上传附件，再写事务，事务失败时删除已上传的附件
func (s *postServiceImpl) CreatePost(ctx context.Context, input PostInput, authorID uint64) (out *dto.PostDTO, err error) {
	defer func() { s.observe(opCreate, err) }()

	if input == nil || strings.TrimSpace(input.postTitle()) == "" {
		return nil, newPublishError(ErrParamInvalid)
	}
	tagIDs, err := s.normalizeTags(input.postTagIDs())
	if err != nil {
		return nil, newPublishError(err)
	}

	post := &model.Post{
		AuthorID: authorID,
		Kind:     input.postKind(),
		Title:    input.postTitle(),
	}

	var uploaded *asset.Asset
	switch in := input.(type) {
	case *TextPostInput:
		body := in.Body
		post.Body = &body
	case *ResourcePostInput:
		if err = s.checkFile(in.File); err != nil {
			return nil, newPublishError(err)
		}
		uploaded, err = s.upload(ctx, in.File, authorID)
		if err != nil {
			log.WarnContext(ctx, "asset upload failed", "author_id", authorID, "err", err)
			return nil, newPublishError(err)
		}
		fileName := in.File.FileName
		post.AssetID = &uploaded.ID
		post.AssetURL = &uploaded.URL
		post.FileName = &fileName
		post.ByteSize = &uploaded.ByteSize
		post.MimeType = &uploaded.MimeType
	default:
		return nil, newPublishError(ErrParamInvalid)
	}

	created, err := s.createTx(ctx, post, tagIDs)
	if err != nil {
		log.ErrorContext(ctx, "create post tx failed", "author_id", authorID, "err", err)
		if uploaded != nil {
			s.compensate(ctx, uploaded.ID, opCreate, err)
		}
		return nil, newPublishError(err)
	}

	out, err = ToPostDTO(created)
	if err != nil {
		return nil, newPublishError(err)
	}
	return out, nil
}

// UpdatePost 更新字段并整体替换标签，附件不可替换，因此不涉及补偿
func (s *postServiceImpl) UpdatePost(ctx context.Context, postID uint64, update PostUpdate) (out *dto.PostDTO, err error) {
	defer func() { s.observe(opUpdate, err) }()

	if update == nil {
		return nil, newPublishError(ErrParamInvalid)
	}
	tagIDs, err := s.normalizeTags(update.updateTagIDs())
	if err != nil {
		return nil, newPublishError(err)
	}

	patch := repository.PostPatch{ID: postID, Kind: update.updateKind()}
	switch u := update.(type) {
	case *TextPostUpdate:
		body := u.Body
		patch.Title = u.Title
		patch.Body = &body
	case *ResourcePostUpdate:
		fileName := u.FileName
		patch.Title = u.Title
		patch.FileName = &fileName
	default:
		return nil, newPublishError(ErrParamInvalid)
	}
	if strings.TrimSpace(patch.Title) == "" {
		return nil, newPublishError(ErrParamInvalid)
	}

	wctx, cancel := withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()
	updated, err := s.postRepo.UpdatePostTx(wctx, patch, tagIDs)
	if err == nil && updated == nil {
		err = repository.ErrNoRowAffected
	}
	if err != nil {
		log.WarnContext(ctx, "update post tx failed", "post_id", postID, "err", err)
		return nil, newPublishError(err)
	}

	out, err = ToPostDTO(updated)
	if err != nil {
		return nil, newPublishError(err)
	}
	return out, nil
}

// GetPost 回读帖子
func (s *postServiceImpl) GetPost(ctx context.Context, postID uint64) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, newPublishError(err)
	}
	out, err := ToPostDTO(post)
	if err != nil {
		return nil, newPublishError(err)
	}
	return out, nil
}

// DeletePost 删除帖子后清理附件，附件删除失败只登记不影响结果
func (s *postServiceImpl) DeletePost(ctx context.Context, postID uint64) error {
	wctx, cancel := withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()
	deleted, err := s.postRepo.DeletePost(wctx, postID)
	if err != nil {
		return newPublishError(err)
	}

	assetID, ok := s.assetOf(deleted)
	if !ok {
		return nil
	}
	if err = s.deleteAsset(ctx, assetID); err != nil {
		log.ErrorContext(ctx, "asset delete after post delete failed", "post_id", postID, "asset_id", assetID, "err", err)
		s.recordOrphan(ctx, assetID, opDelete, err)
		return nil
	}
	log.InfoContext(ctx, "post asset deleted", "post_id", postID, "asset_id", assetID)
	return nil
}

func (s *postServiceImpl) createTx(ctx context.Context, post *model.Post, tagIDs []uint64) (*model.Post, error) {
	wctx, cancel := withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()
	created, err := s.postRepo.CreatePostTx(wctx, post, tagIDs)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, &repository.WriteError{Op: "create post tx", Err: repository.ErrEmptyResult}
	}
	return created, nil
}

func (s *postServiceImpl) upload(ctx context.Context, file *StagedFile, ownerID uint64) (*asset.Asset, error) {
	uctx, cancel := withTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()
	uploaded, err := s.store.Upload(uctx, asset.UploadRequest{
		Data:         file.Data,
		OriginalName: file.FileName,
		MimeType:     file.MimeType,
		OwnerID:      ownerID,
	})
	if err != nil {
		if !asset.IsUploadError(err) {
			err = &asset.OpError{Op: asset.OpUpload, Err: err}
		}
		return nil, err
	}
	return uploaded, nil
}

// compensate 最多一次的补偿删除，失败只记录，不改变返回给调用方的错误
func (s *postServiceImpl) compensate(ctx context.Context, assetID, op string, cause error) {
	if err := s.deleteAsset(ctx, assetID); err != nil {
		s.metrics.ObserveCompensation(metrics.CompensationFailed)
		log.ErrorContext(ctx, "asset compensation failed",
			"kind", KindCompensationFailed.String(),
			"op", op,
			"asset_id", assetID,
			"cause", cause,
			"err", err,
		)
		s.recordOrphan(ctx, assetID, op, err)
		return
	}
	s.metrics.ObserveCompensation(metrics.CompensationDeleted)
	log.InfoContext(ctx, "asset compensated", "op", op, "asset_id", assetID)
}

// deleteAsset 请求取消后仍尝试一次，受 compensation_timeout 约束
func (s *postServiceImpl) deleteAsset(ctx context.Context, assetID string) error {
	dctx, cancel := withTimeout(context.WithoutCancel(ctx), s.cfg.CompensationTimeout)
	defer cancel()
	return s.store.Delete(dctx, assetID)
}

func (s *postServiceImpl) recordOrphan(ctx context.Context, assetID, op string, reason error) {
	if s.orphans == nil {
		return
	}
	rctx, cancel := withTimeout(context.WithoutCancel(ctx), s.cfg.CompensationTimeout)
	defer cancel()
	err := s.orphans.Record(rctx, repository.OrphanAsset{
		AssetID:    assetID,
		Op:         op,
		Reason:     reason.Error(),
		RecordedAt: time.Now(),
	})
	if err != nil {
		log.ErrorContext(ctx, "record orphan asset failed", "asset_id", assetID, "err", err)
	}
}

// assetOf 优先从公开 URL 解析 assetID，解析失败时退回存储的 assetID
func (s *postServiceImpl) assetOf(post *model.Post) (string, bool) {
	if post == nil || post.Kind != model.PostKindResource {
		return "", false
	}
	if post.AssetURL != nil {
		if id, ok := s.store.ExtractAssetID(*post.AssetURL); ok {
			return id, true
		}
	}
	if post.AssetID != nil && *post.AssetID != "" {
		return *post.AssetID, true
	}
	return "", false
}

func (s *postServiceImpl) normalizeTags(tagIDs []uint64) ([]uint64, error) {
	ids := repository.UniqueTagIDs(tagIDs)
	for _, id := range ids {
		if id == 0 {
			return nil, ErrParamInvalid
		}
	}
	if s.cfg.MaxTags > 0 && len(ids) > s.cfg.MaxTags {
		return nil, ErrTooManyTags
	}
	return ids, nil
}

func (s *postServiceImpl) checkFile(file *StagedFile) error {
	if file == nil || len(file.Data) == 0 {
		return ErrMissingFile
	}
	if s.cfg.MaxUploadSize > 0 && int64(len(file.Data)) > s.cfg.MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}

func (s *postServiceImpl) observe(op string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = ClassifyError(err).String()
	}
	s.metrics.ObservePublish(op, outcome)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
