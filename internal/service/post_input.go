package service

import "Bulletin/internal/model"

// StagedFile 待上传的文件
type StagedFile struct {
	Data     []byte
	FileName string
	MimeType string
}

// PostInput 发帖输入，只有 TextPostInput 与 ResourcePostInput 两种
type PostInput interface {
	postKind() string
	postTitle() string
	postTagIDs() []uint64
}

type TextPostInput struct {
	Title  string
	Body   string
	TagIDs []uint64
}

type ResourcePostInput struct {
	Title  string
	TagIDs []uint64
	File   *StagedFile
}

func (*TextPostInput) postKind() string { return model.PostKindText }
func (in *TextPostInput) postTitle() string { return in.Title }
func (in *TextPostInput) postTagIDs() []uint64 { return in.TagIDs }

func (*ResourcePostInput) postKind() string { return model.PostKindResource }
func (in *ResourcePostInput) postTitle() string { return in.Title }
func (in *ResourcePostInput) postTagIDs() []uint64 { return in.TagIDs }

// PostUpdate 更新输入，资源帖只能改文件名，文件本身不可替换
type PostUpdate interface {
	updateKind() string
	updateTagIDs() []uint64
}

type TextPostUpdate struct {
	Title  string
	Body   string
	TagIDs []uint64
}

type ResourcePostUpdate struct {
	Title    string
	FileName string
	TagIDs   []uint64
}

func (*TextPostUpdate) updateKind() string { return model.PostKindText }
func (in *TextPostUpdate) updateTagIDs() []uint64 { return in.TagIDs }

func (*ResourcePostUpdate) updateKind() string { return model.PostKindResource }
func (in *ResourcePostUpdate) updateTagIDs() []uint64 { return in.TagIDs }
