package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable           = "enable"
	fieldVerified         = "verified"
	fieldLastLogin        = "last_login"
	fieldLoginCount       = "login_count"
	fieldLastIP           = "last_ip"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
)
