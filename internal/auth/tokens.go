package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	tokenIssuer   = "inkwell-server"
	tokenAudience = "inkwell-client"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32 // 256 bits
	keyHexSize   = 64 // 32 bytes as hex string
)

var (
	// ErrTokenExpired means the token was well-formed but its validity
	// window has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid means the token could not be decrypted or its claims
	// are malformed.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload embedded in every access token.
type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
}

// TokenService issues and verifies PASETO v4.local bearer tokens carrying a
// user identifier and email with a fixed validity window.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	expiry       time.Duration
}

// NewTokenService creates a token service from a 64-hex-character key.
func NewTokenService(keyHex string, expiry time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("token key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for token key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &TokenService{symmetricKey: key, expiry: expiry}, nil
}

// GenerateKey returns a fresh random key in the hex form NewTokenService
// accepts. Tokens issued under a generated key do not survive a restart.
func GenerateKey() (string, error) {
	bytes := make([]byte, keyBytesSize)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Issue creates an encrypted token for the user, valid for the configured
// expiry window.
func (s *TokenService) Issue(userID uint, email string) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.expiry))

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("uid", userID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", email)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts and validates a token, recovering its claims. Failures
// are distinguished as ErrTokenExpired vs ErrTokenInvalid; callers treat
// both as "not authenticated".
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		// Rule errors mean the token decrypted fine but a claim check
		// (expiry, issuer, audience) failed; anything else is garbage.
		var ruleErr paseto.RuleError
		if errors.As(err, &ruleErr) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}

	return &claims, nil
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}
