package model

// PostTag 帖子与标签的关联，随帖子整体替换
type PostTag struct {
	PostID uint64 `gorm:"primaryKey" json:"post_id"`
	TagID  uint64 `gorm:"primaryKey;index:idx_tag_id" json:"tag_id"`
}

func (PostTag) TableName() string {
	return "post_tags"
}
