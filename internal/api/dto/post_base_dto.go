package dto

// 帖子类型，与 model.PostKind* 保持一致
const (
	PostTypeText     = "text"
	PostTypeResource = "resource"
)

// CreateTextPostDTO JSON 方式创建文本帖
type CreateTextPostDTO struct {
	Type   string   `json:"type" binding:"required" validate:"eq=text"`
	Title  string   `json:"title" binding:"required" validate:"min=1,max=255"`
	Body   string   `json:"body" binding:"required" validate:"min=1,max=10000"`
	TagIDs []uint64 `json:"tag_ids" validate:"max=10,dive,min=1"`
}

// CreateResourcePostDTO multipart 方式创建资源帖，文件单独从 form 读取
type CreateResourcePostDTO struct {
	Type   string `form:"type" binding:"required" validate:"eq=resource"`
	Title  string `form:"title" binding:"required" validate:"min=1,max=255"`
	TagIDs string `form:"tag_ids" validate:"max=512"`
}

// UpdatePostDTO 更新帖子，type 必须与原帖一致
type UpdatePostDTO struct {
	Type     string   `json:"type" binding:"required" validate:"oneof=text resource"`
	Title    string   `json:"title" binding:"required" validate:"min=1,max=255"`
	Body     string   `json:"body" validate:"required_if=Type text,max=10000"`
	FileName string   `json:"file_name" validate:"required_if=Type resource,max=255"`
	TagIDs   []uint64 `json:"tag_ids" validate:"max=10,dive,min=1"`
}
