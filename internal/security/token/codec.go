// Package token implements the session token codec.
//
// A token carries an identity payload (account id, role tag, token type)
// through two independent layers:
//
//   - the payload is serialized to JSON and encrypted with AES-256-GCM under
//     the encryption secret (fresh random nonce per call), then
//   - the ciphertext is wrapped in an HS256-signed JWT under the signing
//     secret, so tampering with the ciphertext or envelope is detectable.
//
// Compromising one secret alone neither decrypts nor forges tokens. The codec
// performs no I/O; persistence and revocation live in the session store.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Token types embedded in the payload.
const (
	// TypeAuthentication marks a login session token.
	TypeAuthentication = "authentication"
	// TypeVerification marks a one-shot email verification token.
	TypeVerification = "verification"
)

var (
	// ErrInvalidToken is the single failure outcome for Decode. Bad signature,
	// failed decryption and malformed payload are indistinguishable on purpose.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrConfig is returned when a codec is constructed with missing secrets.
	ErrConfig = errors.New("token: invalid codec config")
)

// Payload is the identity payload embedded inside an encrypted token.
type Payload struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	Type      string `json:"type"`
}

func (p Payload) valid() bool {
	return strings.TrimSpace(p.AccountID) != "" &&
		strings.TrimSpace(p.Role) != "" &&
		strings.TrimSpace(p.Type) != ""
}

// Codec encrypts, signs, verifies and decrypts identity payloads.
// It is immutable after construction and safe for concurrent use.
type Codec struct {
	aead    cipher.AEAD
	signKey []byte
}

// NewCodec builds a Codec from the two process-wide secrets.
//
// The encryption secret is stretched to a 32-byte AES key via SHA-256; the
// signing secret is used directly as the HMAC key. Both must be non-empty and
// should come from configuration, not hard-coded constants.
func NewCodec(encryptSecret, signSecret string) (*Codec, error) {
	if strings.TrimSpace(encryptSecret) == "" || strings.TrimSpace(signSecret) == "" {
		return nil, ErrConfig
	}

	key := sha256.Sum256([]byte(encryptSecret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, ErrConfig
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrConfig
	}

	return &Codec{aead: aead, signKey: []byte(signSecret)}, nil
}

// Encode produces an opaque, tamper-evident token string for the payload.
// Encoding is deterministic in payload content only; the ciphertext differs
// on every call because of nonce randomization.
func (c *Codec) Encode(p Payload) (string, error) {
	if !p.valid() {
		return "", ErrInvalidToken
	}

	plain, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)

	claims := jwt.MapClaims{
		"token": base64.RawURLEncoding.EncodeToString(sealed),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signKey)
}

// Decode verifies the envelope signature, decrypts the payload and parses it.
//
// The signature is checked before any decryption is attempted; an unverified
// envelope is never fed to the cipher. Every failure collapses to
// ErrInvalidToken.
func (c *Codec) Decode(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 4096 {
		return Payload{}, ErrInvalidToken
	}

	parsed, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return c.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Payload{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Payload{}, ErrInvalidToken
	}
	enc, ok := claims["token"].(string)
	if !ok || enc == "" {
		return Payload{}, ErrInvalidToken
	}

	sealed, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil || len(sealed) < c.aead.NonceSize() {
		return Payload{}, ErrInvalidToken
	}

	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Payload{}, ErrInvalidToken
	}

	var p Payload
	if err := json.Unmarshal(plain, &p); err != nil || !p.valid() {
		return Payload{}, ErrInvalidToken
	}
	return p, nil
}
