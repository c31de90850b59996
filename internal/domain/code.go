package domain

// Flow identifies which authentication flow a verification code belongs to.
type Flow string

const (
	FlowLogin  Flow = "login"
	FlowSignup Flow = "signup"
)

// ValidFlow reports whether s is a known flow name.
func ValidFlow(s string) bool {
	return Flow(s) == FlowLogin || Flow(s) == FlowSignup
}

// VerificationCode is a single-use 6-digit credential proving control of an
// email address within a bounded time window.
// PK: email, SK: code_id. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
// At most one unverified, unexpired code exists per email: issuing a new code
// deletes all prior unverified rows first. Verified rows are retained as an
// audit record and are never matched again.
type VerificationCode struct {
	Email     string `json:"email" dynamodbav:"email"`
	CodeID    string `json:"code_id" dynamodbav:"code_id"`
	Code      string `json:"-" dynamodbav:"code"` // 6 decimal digits, leading zeros preserved
	Flow      Flow   `json:"type" dynamodbav:"flow"`
	UserID    string `json:"user_id,omitempty" dynamodbav:"user_id"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	Verified  bool   `json:"verified" dynamodbav:"verified"`
	Attempts  int    `json:"-" dynamodbav:"attempts"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}
