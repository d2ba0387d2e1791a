package auth

import "time"

// AuthType tells how a user signs in.
type AuthType string

const (
	AuthTypeEmail  AuthType = "email"
	AuthTypeWallet AuthType = "wallet"
)

// User is an account as exposed to callers. The password hash
// never leaves the package.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	AuthType      AuthType  `json:"auth_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// DisplayName returns the name, or the shortened wallet address
// for wallet accounts without one.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.WalletAddress != "":
		return FormatWalletAddress(u.WalletAddress)
	default:
		return u.Email
	}
}

// Session is a signed-in session. Tokens carry the session ID, so
// deleting the session revokes every token issued for it.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Grant is the outcome of a successful sign-up or sign-in.
type Grant struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type userRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	PasswordHash  string    `json:"password_hash,omitempty"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	AuthType      AuthType  `json:"auth_type"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r *userRecord) user() *User {
	return &User{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		WalletAddress: r.WalletAddress,
		AuthType:      r.AuthType,
		CreatedAt:     r.CreatedAt,
	}
}

func userKey(id string) string          { return "user/" + id }
func emailKey(email string) string      { return "user_email/" + email }
func walletKey(address string) string   { return "user_wallet/" + address }
func sessionKey(sessionID string) string { return "session/" + sessionID }
