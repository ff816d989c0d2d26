package utils // package utils provides helpers for tokens and password hashing

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"

    "github.com/mrjaketay/timeApp-sub001/internal/model"
)

// AccessToken is a signed JWT and its expiry.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// RefreshToken is the raw opaque token handed to the client.  Only its
// SHA‑256 hash is stored.
type RefreshToken struct {
    Raw string
    Exp time.Time
}

// Claims is the decoded form of an access token.
type Claims struct {
    UserID string
    Role   model.Role
}

// NewAccessToken builds and signs an HS256 JWT carrying sub and role.
func NewAccessToken(secret, userID string, role model.Role, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": string(role),
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and returns the claims.
// Tokens signed with anything other than HMAC are rejected.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, errors.New("unexpected signing method")
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, errors.New("invalid token")
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, errors.New("invalid claims")
    }
    sub, _ := mc["sub"].(string)
    roleStr, _ := mc["role"].(string)
    role, err := model.ParseRole(roleStr)
    if sub == "" || err != nil {
        return Claims{}, errors.New("invalid claims")
    }
    return Claims{UserID: sub, Role: role}, nil
}

// NewRefreshToken returns a random 96 hex char token valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48)
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the hex SHA‑256 of a raw refresh token.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// NewInvitationToken returns 32 random bytes as 64 hex chars.
func NewInvitationToken() (string, error) {
    return randomHex(32)
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
