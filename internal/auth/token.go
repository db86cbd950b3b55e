package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const (
	tokenName      = "mobile"
	secretBytes    = 30
	secretLength   = 40
	tokenSeparator = "|"
)

// newPlainToken returns a fresh token id, its secret and the "<id>|<secret>" plaintext.
func newPlainToken() (id, secret, plain string, err error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", err
	}
	id = uuid.NewString()
	secret = base64.RawURLEncoding.EncodeToString(buf)
	return id, secret, id + tokenSeparator + secret, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func hashesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// parsePlainToken splits "<uuid>|<secret>" and rejects anything else.
func parsePlainToken(plain string) (id, secret string, ok bool) {
	id, secret, found := strings.Cut(plain, tokenSeparator)
	if !found || len(secret) != secretLength {
		return "", "", false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", "", false
	}
	return parsed.String(), secret, true
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
