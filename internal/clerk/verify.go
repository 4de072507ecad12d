// Package clerk provides identity-provider webhook signature verification
// without depending on the vendor SDK.
package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTolerance is the default webhook timestamp tolerance (5 minutes).
	DefaultTolerance = 5 * time.Minute

	secretPrefix   = "whsec_"
	signingVersion = "v1"

	// Header names of the delivery metadata.
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

var (
	ErrMissingHeaders   = errors.New("clerk: missing webhook signature headers")
	ErrBadTimestamp     = errors.New("clerk: malformed webhook timestamp")
	ErrBadSecret        = errors.New("clerk: malformed signing secret")
	ErrNoValidSignature = errors.New("clerk: no valid signature found")
	ErrTimestampExpired = errors.New("clerk: timestamp outside tolerance")
)

// Verify checks the webhook signature headers against the raw payload.
// The signed content is "<id>.<timestamp>.<payload>", HMAC-SHA256 keyed with
// the base64-decoded secret after the "whsec_" prefix.
func Verify(payload []byte, headers http.Header, secret string) error {
	return VerifyWithTolerance(payload, headers, secret, DefaultTolerance)
}

// VerifyWithTolerance verifies with a custom timestamp tolerance.
// A zero tolerance skips the timestamp freshness check.
func VerifyWithTolerance(payload []byte, headers http.Header, secret string, tolerance time.Duration) error {
	msgID := strings.TrimSpace(headers.Get(HeaderID))
	msgTimestamp := strings.TrimSpace(headers.Get(HeaderTimestamp))
	msgSignature := strings.TrimSpace(headers.Get(HeaderSignature))
	if msgID == "" || msgTimestamp == "" || msgSignature == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(msgTimestamp, 10, 64)
	if err != nil {
		return ErrBadTimestamp
	}
	if tolerance > 0 {
		diff := time.Since(time.Unix(ts, 0))
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			return ErrTimestampExpired
		}
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return err
	}
	expected := computeSignature(key, msgID, msgTimestamp, payload)

	// The header carries space-separated "<version>,<base64sig>" entries.
	for _, entry := range strings.Fields(msgSignature) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != signingVersion {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrNoValidSignature
}

func decodeSecret(secret string) ([]byte, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(secret), secretPrefix)
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(key) == 0 {
		return nil, ErrBadSecret
	}
	return key, nil
}

// SignForTest produces a valid signature header value for handler tests.
func SignForTest(secret, msgID, msgTimestamp string, payload []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return signingVersion + "," + computeSignature(key, msgID, msgTimestamp, payload), nil
}

func computeSignature(key []byte, msgID, msgTimestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(msgTimestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
