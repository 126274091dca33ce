package constants

// 错误码，响应格式固定为 {"error": <code>}
const (
	// 认证相关错误
	ErrNoToken            = "no_token"
	ErrInvalidToken       = "invalid_token"
	ErrForbidden          = "forbidden"
	ErrMissingCredentials = "missing_credentials"
	ErrInvalidCredentials = "invalid_credentials"

	// 参数相关错误
	ErrMissingFields     = "missing_fields"
	ErrInvalidExpiration = "invalid_expiration"

	// 系统错误
	ErrDatabase       = "db_error"
	ErrInternalServer = "internal_error"
	ErrNotFound       = "not_found"
)
