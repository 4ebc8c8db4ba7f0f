package handler

import (
	"Bulletin/internal/api/dto"
	"Bulletin/internal/pkg/response"
	"Bulletin/internal/pkg/security"
	"Bulletin/internal/pkg/util"
	"Bulletin/internal/service"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// multipartOverhead 表单中除文件外其他字段的余量
const multipartOverhead = 1 << 20

type PostHandler struct {
	postSvc       service.PostService
	maxUploadSize int64
}

func NewPostHandler(postSvc service.PostService, maxUploadSize int64) *PostHandler {
	return &PostHandler{
		postSvc:       postSvc,
		maxUploadSize: maxUploadSize,
	}
}

// CreatePost JSON 创建文本帖，multipart 创建资源帖
func (s *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetUint64("user_id")

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		s.createResourcePost(c, userID)
		return
	}

	var req dto.CreateTextPostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bodyError(err))
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.CreatePost(c.Request.Context(), &service.TextPostInput{
		Title:  req.Title,
		Body:   req.Body,
		TagIDs: req.TagIDs,
	}, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, post)
}

func (s *PostHandler) createResourcePost(c *gin.Context, userID uint64) {
	if s.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize+multipartOverhead)
	}

	var req dto.CreateResourcePostDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bodyError(err))
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}
	tagIDs, err := util.ParseTagIDs(req.TagIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	input := &service.ResourcePostInput{Title: req.Title, TagIDs: tagIDs}
	fileHeader, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// 交给编排层按校验失败处理
	case err != nil:
		response.Error(c, bodyError(err))
		return
	default:
		if s.maxUploadSize > 0 && fileHeader.Size > s.maxUploadSize {
			response.Fail(c, response.BadRequest, service.ErrFileTooLarge.Error())
			return
		}
		staged, err := readStagedFile(fileHeader)
		if err != nil {
			response.Error(c, bodyError(err))
			return
		}
		input.File = staged
	}

	post, err := s.postSvc.CreatePost(c.Request.Context(), input, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, post)
}

// UpdatePost 仅作者可更新
func (s *PostHandler) UpdatePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := parsePostID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdatePostDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bodyError(err))
		return
	}
	if err = util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	existing, err := s.postSvc.GetPost(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if existing.UserID != userID {
		response.Error(c, service.UnauthorizedError)
		return
	}

	var update service.PostUpdate
	switch req.Type {
	case dto.PostTypeText:
		update = &service.TextPostUpdate{Title: req.Title, Body: req.Body, TagIDs: req.TagIDs}
	case dto.PostTypeResource:
		update = &service.ResourcePostUpdate{Title: req.Title, FileName: req.FileName, TagIDs: req.TagIDs}
	}

	post, err := s.postSvc.UpdatePost(c.Request.Context(), postID, update)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, post)
}

// DeletePost 作者本人或管理员、审核员可删除
func (s *PostHandler) DeletePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := parsePostID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	existing, err := s.postSvc.GetPost(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	roles := c.GetStringSlice("roles")
	if existing.UserID != userID && !slices.Contains(roles, security.RoleAdmin) && !slices.Contains(roles, security.RoleAudit) {
		response.Error(c, service.UnauthorizedError)
		return
	}

	if err = s.postSvc.DeletePost(c.Request.Context(), postID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (s *PostHandler) GetPost(c *gin.Context) {
	postID, err := parsePostID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.GetPost(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, post)
}

func parsePostID(c *gin.Context) (uint64, error) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		return 0, fmt.Errorf("%w，帖子 ID 非法", util.ErrInvalidDTO)
	}
	return postID, nil
}

// readStagedFile 读取上传文件，声明类型缺失时按内容嗅探
func readStagedFile(fh *multipart.FileHeader) (*service.StagedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return &service.StagedFile{
		Data:     data,
		FileName: fh.Filename,
		MimeType: mimeType,
	}, nil
}

// bodyError 请求体解析失败统一按参数错误返回
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w，%s", util.ErrInvalidDTO, service.ErrFileTooLarge.Error())
	}
	return fmt.Errorf("%w: %v", util.ErrInvalidDTO, err)
}
