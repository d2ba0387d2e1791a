// Package auth manages learner accounts: email sign-up and sign-in,
// wallet connect, sign-out and session token verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"digital.vasic.lessons/pkg/apperr"
	"digital.vasic.lessons/pkg/logging"
	"digital.vasic.lessons/pkg/store"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// MaxPasswordLength is the bcrypt input limit.
	MaxPasswordLength = 72
	// MaxNameLength bounds display names.
	MaxNameLength = 100

	// DefaultTokenTTL is how long a session lasts.
	DefaultTokenTTL = 24 * time.Hour
)

type signUpInput struct {
	Name     string `validate:"max=100"`
	Email    string `validate:"required,email,max=320"`
	Password string `validate:"min=6,max=72"`
}

type walletInput struct {
	Address string `validate:"required,alphanum,max=128"`
}

// Service implements account operations on top of a store.
type Service struct {
	store      store.Store
	jwtKey     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	logger     logging.Logger
	validate   *validator.Validate
}

// Option configures a Service.
type Option func(*Service)

// WithTokenTTL sets the session lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithBcryptCost sets the bcrypt cost factor.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates an account service. The JWT key must not be empty.
func NewService(st store.Store, jwtKey []byte, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("auth: store is required")
	}
	if len(jwtKey) == 0 {
		return nil, errors.New("auth: jwt key is required")
	}
	s := &Service{
		store:      st,
		jwtKey:     jwtKey,
		tokenTTL:   DefaultTokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		logger:     logging.NullLogger{},
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an email account and opens a session for it.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*Grant, error) {
	in := signUpInput{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: password,
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, signUpError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, newErrPasswordTooLong(MaxPasswordLength)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	now := s.now().UTC()
	rec := &userRecord{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		AuthType:     AuthTypeEmail,
		CreatedAt:    now,
	}
	sess := s.newSession(rec.ID, now)

	err = s.store.Update(ctx, func(tx store.Tx) error {
		_, err := tx.Get(emailKey(rec.Email))
		if err == nil {
			return newErrEmailExists()
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := store.TxPutJSON(tx, userKey(rec.ID), rec); err != nil {
			return err
		}
		if err := tx.Put(emailKey(rec.Email), []byte(rec.ID)); err != nil {
			return err
		}
		return store.TxPutJSON(tx, sessionKey(sess.ID), sess)
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.Info("user_signed_up",
		logging.StringField("user_id", rec.ID),
		logging.StringField("auth_type", string(rec.AuthType)),
	)
	return s.grant(rec, sess)
}

func signUpError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.InvalidInput(err.Error())
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		return newErrInvalidEmail()
	case "Password":
		if fe.Tag() == "max" {
			return newErrPasswordTooLong(MaxPasswordLength)
		}
		return newErrPasswordTooShort(MinPasswordLength)
	case "Name":
		return newErrNameTooLong(MaxNameLength)
	}
	return apperr.InvalidInput(fe.Error())
}

// SignIn opens a session for an email account. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Grant, error) {
	var rec userRecord
	id, err := s.store.Get(ctx, emailKey(normalizeEmail(email)))
	if err == nil {
		err = store.GetJSON(ctx, s.store, userKey(string(id)), &rec)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, newErrInvalidCredentials()
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if rec.PasswordHash == "" {
		return nil, newErrInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, newErrInvalidCredentials()
	}

	sess := s.newSession(rec.ID, s.now().UTC())
	if err := store.PutJSON(ctx, s.store, sessionKey(sess.ID), sess); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.Info("user_signed_in", logging.StringField("user_id", rec.ID))
	return s.grant(&rec, sess)
}

// ConnectWallet signs in with a wallet address, creating the account
// on first use.
func (s *Service) ConnectWallet(ctx context.Context, address string) (*Grant, error) {
	in := walletInput{Address: strings.TrimSpace(address)}
	if err := s.validate.Struct(in); err != nil {
		return nil, newErrInvalidWallet()
	}

	now := s.now().UTC()
	candidate := &userRecord{
		ID:            uuid.NewString(),
		WalletAddress: in.Address,
		AuthType:      AuthTypeWallet,
		CreatedAt:     now,
	}

	var rec userRecord
	var created bool
	var sess *Session
	err := s.store.Update(ctx, func(tx store.Tx) error {
		created = false
		id, err := tx.Get(walletKey(in.Address))
		switch {
		case err == nil:
			if err := store.TxGetJSON(tx, userKey(string(id)), &rec); err != nil {
				return err
			}
		case errors.Is(err, store.ErrNotFound):
			rec = *candidate
			created = true
			if err := store.TxPutJSON(tx, userKey(rec.ID), &rec); err != nil {
				return err
			}
			if err := tx.Put(walletKey(rec.WalletAddress), []byte(rec.ID)); err != nil {
				return err
			}
		default:
			return err
		}
		sess = s.newSession(rec.ID, now)
		return store.TxPutJSON(tx, sessionKey(sess.ID), sess)
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.Info("wallet_connected",
		logging.StringField("user_id", rec.ID),
		logging.StringField("wallet", FormatWalletAddress(rec.WalletAddress)),
		logging.BoolField("created", created),
	)
	return s.grant(&rec, sess)
}

// SignOut revokes the session a token belongs to. Signing out an
// already revoked session succeeds.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.ParseToken(token)
	if err != nil {
		return newErrInvalidToken().SetDebug(err)
	}
	if err := s.store.Delete(ctx, sessionKey(claims.ID)); err != nil {
		return wrapStoreErr(err)
	}
	s.logger.Info("user_signed_out", logging.StringField("user_id", claims.Subject))
	return nil
}

// Authenticate verifies a token, checks that its session is still
// open and returns the user it belongs to.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, newErrInvalidToken().SetDebug(err)
	}

	var sess Session
	if err := store.GetJSON(ctx, s.store, sessionKey(claims.ID), &sess); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newErrInvalidToken()
		}
		return nil, wrapStoreErr(err)
	}
	if sess.UserID != claims.Subject || !s.now().Before(sess.ExpiresAt) {
		return nil, newErrInvalidToken()
	}

	u, err := s.User(ctx, sess.UserID)
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, newErrInvalidToken()
	}
	return u, err
}

// User loads a user by ID.
func (s *Service) User(ctx context.Context, id string) (*User, error) {
	var rec userRecord
	if err := store.GetJSON(ctx, s.store, userKey(id), &rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, wrapStoreErr(err)
	}
	return rec.user(), nil
}

func (s *Service) newSession(userID string, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: s.expiry(now),
	}
}

func (s *Service) grant(rec *userRecord, sess *Session) (*Grant, error) {
	token, err := s.issueToken(rec, sess)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("sign token: %w", err))
	}
	return &Grant{User: rec.user(), Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func wrapStoreErr(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal(err)
}
