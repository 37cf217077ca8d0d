package freedompay

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// SigningEncoding selects the byte encoding of the canonical string before
// hashing. This is a gateway-version contract, not a stylistic choice:
// legacy endpoints hash latin-1 bytes, current endpoints hash utf-8. A
// mismatch silently breaks signatures for multi-byte-adjacent characters.
type SigningEncoding string

const (
	EncodingLatin1 SigningEncoding = "latin1"
	EncodingUTF8   SigningEncoding = "utf8"
)

const (
	// SigField is excluded from the canonical string and carries the result
	SigField  = "pg_sig"
	saltField = "pg_salt"

	saltLength = 16
	saltChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Sign computes the gateway signature for a field set.
//
// Canonical form: values (not key=value pairs) of all fields except pg_sig,
// sorted by raw field name (ordinal byte order), joined with ";", prefixed
// with "scriptName;" and suffixed with ";secret". The joined string is
// encoded per enc, MD5-hashed and rendered as lowercase hex.
func Sign(scriptName string, fields map[string]string, secret string, enc SigningEncoding) (string, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == SigField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+2)
	parts = append(parts, scriptName)
	for _, k := range keys {
		parts = append(parts, fields[k])
	}
	parts = append(parts, secret)

	raw, err := encodeForSigning(strings.Join(parts, ";"), enc)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the signature over fields (excluding pg_sig) and
// compares it in constant time against the received pg_sig. Inbound
// callbacks must pass this check before any field is trusted.
func Verify(scriptName string, fields map[string]string, secret string, enc SigningEncoding) (bool, error) {
	received := fields[SigField]
	if received == "" {
		return false, nil
	}

	expected, err := Sign(scriptName, fields, secret, enc)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1, nil
}

func encodeForSigning(s string, enc SigningEncoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8, "":
		return []byte(s), nil
	case EncodingLatin1:
		out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("canonical string is not latin-1 encodable: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown signing encoding: %q", enc)
	}
}

// NewSalt returns a fresh 16-character alphanumeric salt. The salt only has
// to be unique per request, not unpredictable; the gateway echoes it back.
func NewSalt() string {
	b := make([]byte, saltLength)
	for i := range b {
		b[i] = saltChars[rand.Intn(len(saltChars))]
	}
	return string(b)
}
