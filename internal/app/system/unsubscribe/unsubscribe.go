// Package unsubscribe signs and verifies the tokens used in one-click
// unsubscribe links. A token carries the reply key of the sent-notification
// marker it was issued for.
package unsubscribe

import (
	"errors"
	"time"

	"github.com/gorilla/securecookie"
)

const tokenName = "unsubscribe"

// DefaultMaxAge is how long a link keeps working.
const DefaultMaxAge = 90 * 24 * time.Hour

// ErrInvalidToken means the token was tampered with, expired or malformed.
var ErrInvalidToken = errors.New("unsubscribe: invalid token")

// Codec issues and verifies tokens.
type Codec struct {
	sc *securecookie.SecureCookie
}

// NewCodec creates a codec. hashKey authenticates tokens and should be 32
// or 64 bytes. blockKey encrypts them and must be 16, 24 or 32 bytes, or nil
// to sign without encrypting.
func NewCodec(hashKey, blockKey []byte, maxAge time.Duration) *Codec {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(maxAge / time.Second))
	return &Codec{sc: sc}
}

// Issue returns a URL-safe token for the reply key.
func (c *Codec) Issue(replyKey string) (string, error) {
	return c.sc.Encode(tokenName, replyKey)
}

// Verify returns the reply key a token was issued for.
func (c *Codec) Verify(token string) (string, error) {
	var replyKey string
	if err := c.sc.Decode(tokenName, token, &replyKey); err != nil {
		return "", ErrInvalidToken
	}
	if replyKey == "" {
		return "", ErrInvalidToken
	}
	return replyKey, nil
}
