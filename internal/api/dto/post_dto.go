package dto

type PostDTO struct {
	// Post
	ID            uint64  `json:"id"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Body          *string `json:"body,omitempty"`
	LikesCount    int     `json:"likes_count"`
	CommentsCount int     `json:"comments_count"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`

	// Resource
	Resource *ResourceDTO `json:"resource,omitempty"`

	// Tags
	Tags []TagDTO `json:"tags"`

	// User
	UserID    uint64 `json:"user_id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

type ResourceDTO struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	ByteSize int64  `json:"byte_size"`
	MimeType string `json:"mime_type"`
}

type TagDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
