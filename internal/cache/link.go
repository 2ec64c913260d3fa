package cache

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidLinkCode means the code is unknown or expired.
var ErrInvalidLinkCode = errors.New("invalid or expired link code")

const (
	linkCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	linkCodeLength   = 8
	linkKeyPrefix    = "link:"
)

// IssueLinkCode creates a one-time code that maps back to userID for ttl.
func IssueLinkCode(ctx context.Context, c Cache, userID string, ttl time.Duration) (string, error) {
	buf := make([]byte, linkCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate link code: %w", err)
	}
	for i, b := range buf {
		buf[i] = linkCodeAlphabet[int(b)%len(linkCodeAlphabet)]
	}
	code := string(buf)
	if err := c.Put(ctx, linkKeyPrefix+code, userID, ttl); err != nil {
		return "", err
	}
	return code, nil
}

// RedeemLinkCode returns the user id behind code and invalidates the code.
func RedeemLinkCode(ctx context.Context, c Cache, code string) (string, error) {
	key := linkKeyPrefix + strings.ToUpper(strings.TrimSpace(code))
	var userID string
	found, err := c.Get(ctx, key, &userID)
	if err != nil {
		return "", err
	}
	if !found || userID == "" {
		return "", ErrInvalidLinkCode
	}
	if err := c.Delete(ctx, key); err != nil {
		return "", err
	}
	return userID, nil
}
