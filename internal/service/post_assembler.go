package service

import (
	"Bulletin/internal/api/dto"
	"Bulletin/internal/model"
	"Bulletin/internal/pkg/consts"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
)

// ToPostDTO 将回读的帖子（含作者、标签）转换为对外结构，关联缺失时给默认值
func ToPostDTO(post *model.Post) (*dto.PostDTO, error) {
	out := &dto.PostDTO{}
	if err := copier.Copy(out, post); err != nil {
		return nil, err
	}
	out.Type = post.Kind
	out.CreatedAt = post.CreatedAt.Format(time.DateTime)
	out.UpdatedAt = post.UpdatedAt.Format(time.DateTime)

	out.Tags = make([]dto.TagDTO, 0, len(post.Tags))
	for _, tag := range post.Tags {
		out.Tags = append(out.Tags, dto.TagDTO{ID: tag.ID, Name: tag.Name})
	}

	switch post.Kind {
	case model.PostKindText:
		out.Resource = nil
	case model.PostKindResource:
		out.Body = nil
		out.Resource = &dto.ResourceDTO{
			URL:      deref(post.AssetURL),
			FileName: deref(post.FileName),
			MimeType: deref(post.MimeType),
		}
		if post.ByteSize != nil {
			out.Resource.ByteSize = *post.ByteSize
		}
	}

	if post.User.ID > 0 {
		out.UserID = post.User.ID
		if post.User.UserDetail.UserID > 0 {
			out.Nickname = post.User.UserDetail.Nickname
			out.AvatarURL = post.User.UserDetail.AvatarURL
		} else {
			out.Nickname = consts.AuthorNamePrefix + strconv.FormatUint(post.User.ID, 10)
			out.AvatarURL = consts.DefaultAvatarURL
		}
	} else {
		out.UserID = post.AuthorID
		out.Nickname = consts.UnknownAuthorName
		out.AvatarURL = consts.DefaultAvatarURL
	}

	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
