package consts

const (
	DefaultAvatarURL = "default_avatar.png"
	// UnknownAuthorName 作者记录缺失时的展示名
	UnknownAuthorName = "未知用户"
	// AuthorNamePrefix 作者未设置昵称时的展示名前缀
	AuthorNamePrefix = "用户_"
)

type contextKey string

// UserIDKey 请求 Context 中的用户 ID
const UserIDKey contextKey = "user_id"
