package model

import (
	"time"
)

// 帖子类型
const (
	PostKindText     = "text"
	PostKindResource = "resource"
)

type Post struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	AuthorID      uint64    `gorm:"not null;index:idx_author_id" json:"author_id"`
	Kind          string    `gorm:"type:varchar(16);not null" json:"kind"` // text | resource
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Body          *string   `gorm:"type:text" json:"body"`
	AssetID       *string   `gorm:"type:varchar(512);index:idx_asset_id" json:"asset_id"`
	AssetURL      *string   `gorm:"type:varchar(1024)" json:"asset_url"`
	FileName      *string   `gorm:"type:varchar(255)" json:"file_name"`
	ByteSize      *int64    `json:"byte_size"`
	MimeType      *string   `gorm:"type:varchar(128)" json:"mime_type"`
	LikesCount    int       `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int       `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 关联关系
	User User  `gorm:"foreignKey:AuthorID;references:ID"`
	Tags []Tag `gorm:"many2many:post_tags;joinForeignKey:PostID;joinReferences:TagID"`
}

func (Post) TableName() string {
	return "posts"
}
