package model

import "time"

// Tag 标签为预置数据，本服务只做关联
type Tag struct {
	ID          uint64  `gorm:"primaryKey"`
	Name        string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_tag_name"`
	Description *string `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
}

func (Tag) TableName() string {
	return "tags"
}
