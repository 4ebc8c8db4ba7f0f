package consts

const (
	// AssetOrphanKey 补偿删除失败的附件登记表（hash，field 为 assetID）
	AssetOrphanKey = "asset:orphan"
)

const (
	// TokenRevokedKey 已注销 Token 的签名
	TokenRevokedKey = "token:revoked:"
)
