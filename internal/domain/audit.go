package domain

import "time"

// Audit action types.
const (
	ActionLogin          = "login"
	ActionSignupComplete = "signup_complete"
	ActionAdminPromotion = "admin_promotion"
	ActionBanIP          = "ban_ip"
	ActionUnbanIP        = "unban_ip"
	ActionBanEmail       = "ban_email"
	ActionUnbanEmail     = "unban_email"
	ActionDeactivate     = "account_deactivated"
	ActionReactivate     = "account_reactivated"
)

// AuditLog records a security-relevant event. PK: log_id.
type AuditLog struct {
	LogID      string    `json:"id" dynamodbav:"log_id"`
	UserID     string    `json:"user_id,omitempty" dynamodbav:"user_id"`
	ActionType string    `json:"action_type" dynamodbav:"action_type"`
	Message    string    `json:"message" dynamodbav:"message"`
	Email      string    `json:"email,omitempty" dynamodbav:"email"`
	IP         string    `json:"ip,omitempty" dynamodbav:"ip"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}
