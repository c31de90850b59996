package gate

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-gate/internal/application/banlist"
	"github.com/go-auth-gate/internal/application/verification"
	"github.com/go-auth-gate/internal/domain"
	"github.com/go-auth-gate/internal/pkg/id"
	pkgtoken "github.com/go-auth-gate/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	IP       string `json:"-"`
}

type SignupRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	IP              string `json:"-"`
}

type VerifyRequest struct {
	ChallengeToken string `json:"challenge_token" validate:"required"`
	Code           string `json:"code" validate:"required,len=6,numeric"`
	IP             string `json:"-"`
}

// VerifyCodeRequest is the raw validate-code operation: no challenge token,
// the password (if any) is resubmitted at verification time.
type VerifyCodeRequest struct {
	Email    string
	Code     string
	Flow     domain.Flow
	Password string
}

// Challenge is returned by the credential step. The token must be presented
// to verify, resend or abandon the flow.
type Challenge struct {
	Token    string `json:"challenge_token"`
	ResendIn int    `json:"resend_in"` // seconds until resend is permitted
}

type AuthResult struct {
	Valid           bool            `json:"valid"`
	PromotedToAdmin bool            `json:"promotedToAdmin"`
	Bearer          string          `json:"-"`
	RefreshToken    string          `json:"-"`
	Session         *domain.Session `json:"-"`
}

// ProfileStore is the subset of the profile store the gate needs.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	Put(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	RecordLogin(ctx context.Context, userID, ip string, at time.Time) error
}

type PendingStore interface {
	Put(ctx context.Context, p *domain.PendingAuth) error
	Get(ctx context.Context, token string) (*domain.PendingAuth, error)
	Delete(ctx context.Context, token string) error
}

type RoleStore interface {
	Has(ctx context.Context, userID, role string) (bool, error)
	Grant(ctx context.Context, grant *domain.UserRole) error
}

type SessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

type AuditStore interface {
	Put(ctx context.Context, entry *domain.AuditLog) error
}

type TokenSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

// SecurityAlerter mirrors sns.SecurityAlerter; nil disables alerting.
type SecurityAlerter interface {
	Alert(ctx context.Context, subject, message string) error
}

type Service interface {
	StartLogin(ctx context.Context, req LoginRequest) (*Challenge, error)
	StartSignup(ctx context.Context, req SignupRequest) (*Challenge, error)
	Verify(ctx context.Context, req VerifyRequest) (*AuthResult, error)
	Resend(ctx context.Context, challengeToken string) (*Challenge, error)
	Abandon(ctx context.Context, challengeToken string) error

	// IssueCode and VerifyCode are the raw code-lifecycle operations,
	// exposed directly for clients that manage their own flow state.
	IssueCode(ctx context.Context, email string, flow domain.Flow, userID string) error
	VerifyCode(ctx context.Context, req VerifyCodeRequest) (*AuthResult, error)
}

type Deps struct {
	Bans         banlist.Service
	Codes        verification.Service
	ProfileRepo  ProfileStore
	PendingRepo  PendingStore
	RoleRepo     RoleStore
	SessionRepo  SessionStore
	AuditRepo    AuditStore
	Signer       TokenSigner
	Alerter      SecurityAlerter // optional
	AdminSecret  string          // empty disables the escalation side channel
	PendingTTL   time.Duration
	ResendAfter  time.Duration
	RefreshDur   time.Duration
}

type service struct {
	bans        banlist.Service
	codes       verification.Service
	profiles    ProfileStore
	pendings    PendingStore
	roles       RoleStore
	sessions    SessionStore
	audit       AuditStore
	signer      TokenSigner
	alerter     SecurityAlerter
	adminSecret string
	pendingTTL  time.Duration
	resendAfter time.Duration
	refreshDur  time.Duration
}

func NewService(deps Deps) Service {
	return &service{
		bans:        deps.Bans,
		codes:       deps.Codes,
		profiles:    deps.ProfileRepo,
		pendings:    deps.PendingRepo,
		roles:       deps.RoleRepo,
		sessions:    deps.SessionRepo,
		audit:       deps.AuditRepo,
		signer:      deps.Signer,
		alerter:     deps.Alerter,
		adminSecret: deps.AdminSecret,
		pendingTTL:  deps.PendingTTL,
		resendAfter: deps.ResendAfter,
		refreshDur:  deps.RefreshDur,
	}
}

func (s *service) StartLogin(ctx context.Context, req LoginRequest) (*Challenge, error) {
	// Ban checks run before the account is even looked up: IP, then email.
	if err := s.requireClean(ctx, req.IP, req.Email, ""); err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := s.requireClean(ctx, "", "", p.UserID); err != nil {
		return nil, err
	}

	return s.openChallenge(ctx, p.UserID, req.Email, domain.FlowLogin, s.secretMatches(req.Password))
}

func (s *service) StartSignup(ctx context.Context, req SignupRequest) (*Challenge, error) {
	if err := s.requireClean(ctx, req.IP, req.Email, ""); err != nil {
		return nil, err
	}

	if _, err := s.profiles.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	if _, err := s.profiles.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	p := &domain.Profile{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.profiles.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return s.openChallenge(ctx, p.UserID, req.Email, domain.FlowSignup, s.secretMatches(req.Password))
}

// openChallenge issues a code and persists the pending flow state. The
// escalation decision is captured here, once, so the password is never
// stored and cannot be swapped before verification.
func (s *service) openChallenge(ctx context.Context, userID, email string, flow domain.Flow, escalate bool) (*Challenge, error) {
	if err := s.codes.Issue(ctx, email, flow, userID); err != nil {
		return nil, err
	}

	tok, err := pkgtoken.NewChallengeToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	pending := &domain.PendingAuth{
		Token:     tok,
		Email:     email,
		Flow:      flow,
		UserID:    userID,
		Escalate:  escalate,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.pendingTTL).Unix(),
	}
	if err := s.pendings.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("persist pending auth: %w", err)
	}
	return &Challenge{Token: tok, ResendIn: int(s.resendAfter.Seconds())}, nil
}

func (s *service) Verify(ctx context.Context, req VerifyRequest) (*AuthResult, error) {
	pending, err := s.loadPending(ctx, req.ChallengeToken)
	if err != nil {
		return nil, err
	}

	rec, err := s.codes.Validate(ctx, pending.Email, req.Code, pending.Flow)
	if err != nil {
		// The flow stays in its verification state: the pending record is
		// kept so the client may retry or resend.
		return nil, err
	}

	userID := pending.UserID
	if userID == "" {
		userID = rec.UserID
	}

	promoted := false
	if pending.Escalate && userID != "" {
		promoted, err = s.promote(ctx, userID)
		if err != nil {
			// A swallowed grant failure would hand out a plain session to a
			// caller who presented the reserved secret, with no audit row to
			// show for it. Fail the verification instead.
			return nil, fmt.Errorf("promote to admin: %w", err)
		}
	}

	result, err := s.finalizeSession(ctx, userID, pending.Email, req.IP, pending.Flow)
	if err != nil {
		// The code stays spent: replay protection takes precedence over
		// finalization convenience.
		return nil, err
	}
	result.PromotedToAdmin = promoted

	if err := s.pendings.Delete(ctx, req.ChallengeToken); err != nil {
		slog.Warn("failed to delete pending auth", "err", err)
	}
	return result, nil
}

func (s *service) Resend(ctx context.Context, challengeToken string) (*Challenge, error) {
	pending, err := s.loadPending(ctx, challengeToken)
	if err != nil {
		return nil, err
	}
	// The cooldown is enforced by the code store, not by client timers.
	if err := s.codes.Issue(ctx, pending.Email, pending.Flow, pending.UserID); err != nil {
		return nil, err
	}
	return &Challenge{Token: challengeToken, ResendIn: int(s.resendAfter.Seconds())}, nil
}

// Abandon is the explicit "back" transition: the pending flow state is
// dropped without touching the code store, the issued code expires naturally.
func (s *service) Abandon(ctx context.Context, challengeToken string) error {
	return s.pendings.Delete(ctx, challengeToken)
}

func (s *service) IssueCode(ctx context.Context, email string, flow domain.Flow, userID string) error {
	return s.codes.Issue(ctx, email, flow, userID)
}

func (s *service) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*AuthResult, error) {
	rec, err := s.codes.Validate(ctx, req.Email, req.Code, req.Flow)
	if err != nil {
		return nil, err
	}
	promoted := false
	if s.secretMatches(req.Password) && rec.UserID != "" {
		promoted, err = s.promote(ctx, rec.UserID)
		if err != nil {
			return nil, fmt.Errorf("promote to admin: %w", err)
		}
	}
	return &AuthResult{Valid: true, PromotedToAdmin: promoted}, nil
}

func (s *service) loadPending(ctx context.Context, token string) (*domain.PendingAuth, error) {
	if token == "" {
		return nil, fmt.Errorf("challenge token required: %w", domain.ErrBadRequest)
	}
	pending, err := s.pendings.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("unknown or expired challenge: %w", domain.ErrUnauthorized)
	}
	if pending.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("challenge expired: %w", domain.ErrUnauthorized)
	}
	return pending, nil
}

func (s *service) requireClean(ctx context.Context, ip, email, accountID string) error {
	res, err := s.bans.CheckBlocked(ctx, ip, email, accountID)
	if err != nil {
		return err
	}
	if res.Blocked {
		return &domain.BlockedError{Reason: res.Reason}
	}
	return nil
}

// secretMatches compares the candidate password against the reserved admin
// secret in constant time. An unset secret disables the side channel.
func (s *service) secretMatches(password string) bool {
	if s.adminSecret == "" || password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.adminSecret)) == 1
}

// promote grants the administrator role if not already held. Idempotent:
// repeat promotions are no-ops and produce no further audit entries.
func (s *service) promote(ctx context.Context, userID string) (bool, error) {
	already, err := s.roles.Has(ctx, userID, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	now := time.Now().UTC()
	if err := s.roles.Grant(ctx, &domain.UserRole{UserID: userID, Role: domain.RoleAdmin, GrantedAt: now}); err != nil {
		return false, err
	}
	if err := s.profiles.Update(ctx, userID, map[string]interface{}{"role": domain.RoleAdmin}); err != nil {
		slog.Warn("failed to mirror admin role onto profile", "user_id", userID, "err", err)
	}

	s.recordAudit(ctx, userID, domain.ActionAdminPromotion, "user promoted to administrator via reserved password", "", "")
	if s.alerter != nil {
		if err := s.alerter.Alert(ctx, "admin promotion via reserved password",
			fmt.Sprintf("user %s was promoted to administrator through the reserved access secret", userID)); err != nil {
			slog.Warn("failed to publish admin-promotion alert", "user_id", userID, "err", err)
		}
	}
	return true, nil
}

// finalizeSession converts the verified attempt into a durable session and
// records login telemetry.
func (s *service) finalizeSession(ctx context.Context, userID, email, ip string, flow domain.Flow) (*AuthResult, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           userID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshDur).Unix(),
		IP:               ip,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	bearer, err := s.signer.Sign(userID, p.Role, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("sign bearer: %w", err)
	}

	if err := s.profiles.RecordLogin(ctx, userID, ip, now); err != nil {
		slog.Warn("failed to record login telemetry", "user_id", userID, "err", err)
	}

	action := domain.ActionLogin
	if flow == domain.FlowSignup {
		action = domain.ActionSignupComplete
	}
	s.recordAudit(ctx, userID, action, "authentication completed", email, ip)

	sess.User = p
	return &AuthResult{
		Valid:        true,
		Bearer:       bearer,
		RefreshToken: refreshToken,
		Session:      sess,
	}, nil
}

func (s *service) recordAudit(ctx context.Context, userID, action, message, email, ip string) {
	entry := &domain.AuditLog{
		LogID:      id.New(),
		UserID:     userID,
		ActionType: action,
		Message:    message,
		Email:      email,
		IP:         ip,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.audit.Put(ctx, entry); err != nil {
		slog.Warn("failed to write audit entry", "action", action, "err", err)
	}
}
