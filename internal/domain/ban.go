package domain

import "time"

// BlockReason distinguishes which of the three block lists matched.
type BlockReason string

const (
	ReasonIPBanned           BlockReason = "ip_banned"
	ReasonEmailBanned        BlockReason = "email_banned"
	ReasonAccountDeactivated BlockReason = "account_deactivated"
)

// Message returns the user-facing explanation for the block.
func (r BlockReason) Message() string {
	switch r {
	case ReasonIPBanned:
		return "Your IP address has been banned."
	case ReasonEmailBanned:
		return "This account has been banned."
	case ReasonAccountDeactivated:
		return "Your account has been deactivated."
	default:
		return "Access denied."
	}
}

// BlockResult is the outcome of a ban-registry check. Blocked=false means
// every list was clean (or skipped for absent inputs).
type BlockResult struct {
	Blocked bool        `json:"blocked"`
	Reason  BlockReason `json:"reason,omitempty"`
}

// BlockedError carries the match reason for a positive ban check.
// errors.Is(err, ErrBlocked) holds for every instance.
type BlockedError struct {
	Reason BlockReason
}

func (e *BlockedError) Error() string { return e.Reason.Message() }

func (e *BlockedError) Unwrap() error { return ErrBlocked }

// BannedIP is a row in the IP ban list. Presence implies block,
// independent of any account.
type BannedIP struct {
	IPAddress string    `json:"ip_address" dynamodbav:"ip_address"`
	Note      string    `json:"note,omitempty" dynamodbav:"note"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// BannedEmail is a row in the email ban list. Presence implies block,
// independent of any account.
type BannedEmail struct {
	Email     string    `json:"email" dynamodbav:"email"`
	Note      string    `json:"note,omitempty" dynamodbav:"note"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
