package utils

import (
    "strings"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"

    "github.com/mrjaketay/timeApp-sub001/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    tok, err := NewAccessToken("s3cret", "01HV0000000000000000000000", model.RoleEmployer, 5)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }
    if time.Until(tok.Exp) <= 0 {
        t.Fatalf("expected future expiry, got %v", tok.Exp)
    }
    claims, err := ParseAccessToken("s3cret", tok.Token)
    if err != nil {
        t.Fatalf("ParseAccessToken: %v", err)
    }
    if claims.UserID != "01HV0000000000000000000000" || claims.Role != model.RoleEmployer {
        t.Fatalf("unexpected claims: %+v", claims)
    }
    if _, err := ParseAccessToken("other", tok.Token); err == nil {
        t.Fatal("expected wrong secret to fail")
    }
}

func TestParseAccessTokenRejectsUnknownRole(t *testing.T) {
    raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub":  "u-1",
        "role": "OWNER",
        "exp":  time.Now().Add(time.Minute).Unix(),
    }).SignedString([]byte("k"))
    if err != nil {
        t.Fatalf("sign: %v", err)
    }
    if _, err := ParseAccessToken("k", raw); err == nil {
        t.Fatal("expected role outside the enum to be rejected")
    }
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
    tok, err := NewAccessToken("k", "u-1", model.RoleEmployee, -1)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }
    if _, err := ParseAccessToken("k", tok.Token); err == nil {
        t.Fatal("expected expired token to be rejected")
    }
}

func TestRefreshAndInvitationTokens(t *testing.T) {
    r1, err := NewRefreshToken(1)
    if err != nil {
        t.Fatalf("NewRefreshToken: %v", err)
    }
    r2, _ := NewRefreshToken(1)
    if len(r1.Raw) != 96 || r1.Raw == r2.Raw {
        t.Fatalf("unexpected refresh tokens %q %q", r1.Raw, r2.Raw)
    }
    if h := HashRefreshRaw(r1.Raw); len(h) != 64 || h == r1.Raw {
        t.Fatalf("unexpected hash %q", h)
    }

    inv, err := NewInvitationToken()
    if err != nil {
        t.Fatalf("NewInvitationToken: %v", err)
    }
    if len(inv) != 64 || strings.Trim(inv, "0123456789abcdef") != "" {
        t.Fatalf("token is not 64 hex chars: %q", inv)
    }
}

func TestPassword(t *testing.T) {
    hash, err := HashPassword("correct horse", 4)
    if err != nil {
        t.Fatalf("HashPassword: %v", err)
    }
    if !VerifyPassword(hash, "correct horse") {
        t.Fatal("expected password to verify")
    }
    if VerifyPassword(hash, "wrong") {
        t.Fatal("wrong password verified")
    }
}
