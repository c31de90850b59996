package domain

// PendingAuth is the server-held flow state between "code sent" and "code
// verified or flow abandoned". The client receives only the opaque Token and
// must present it to verify or resend. PK: token, TTL on ExpiresAt.
//
// Escalate records whether the password supplied at credential time matched
// the reserved admin secret. The decision is made once, at issuance, so the
// plaintext password is never stored and cannot be swapped between the
// credential and verification round trips.
type PendingAuth struct {
	Token     string `json:"-" dynamodbav:"token"`
	Email     string `json:"email" dynamodbav:"email"`
	Flow      Flow   `json:"type" dynamodbav:"flow"`
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Escalate  bool   `json:"-" dynamodbav:"escalate"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
