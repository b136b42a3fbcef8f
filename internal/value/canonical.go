package value

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for digests. The version suffix allows a future change of
// canonical form without colliding with stored digests.
const (
	DomainRecord   = "strata/record/v1"
	DomainSnapshot = "strata/snapshot/v1"
)

// MarshalCanonical produces RFC 8785 canonical JSON for hashing.
//
// Differences from MarshalJSON:
//  1. Object keys sorted by UTF-16 code units (not insertion order)
//  2. No HTML escaping (< > & are emitted as is)
//  3. Strings are NFC normalized
//  4. U+2028 and U+2029 are emitted literally
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest hashes the canonical form of v under domain.
// Format: hex(SHA256(domain + 0x00 + canonical))
func Digest(domain string, v Value) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(domain, data), nil
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when v is known to be data.
func MustDigest(domain string, v Value) string {
	d, err := Digest(domain, v)
	if err != nil {
		panic(err)
	}
	return d
}

// hashWithDomain computes SHA-256 with domain separation. The null byte
// separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

const hexDigits = "0123456789abcdef"

// marshalCanonicalString escapes only what RFC 8785 requires: quote,
// backslash and control characters below U+0020.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	buf := make([]byte, 0, len(normalized)+2)
	buf = append(buf, '"')
	for i := 0; i < len(normalized); i++ {
		c := normalized[i]
		switch {
		case c == '"':
			buf = append(buf, '\\', '"')
		case c == '\\':
			buf = append(buf, '\\', '\\')
		case c == '\b':
			buf = append(buf, '\\', 'b')
		case c == '\f':
			buf = append(buf, '\\', 'f')
		case c == '\n':
			buf = append(buf, '\\', 'n')
		case c == '\r':
			buf = append(buf, '\\', 'r')
		case c == '\t':
			buf = append(buf, '\\', 't')
		case c < 0x20:
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		default:
			buf = append(buf, c)
		}
	}
	buf = append(buf, '"')
	return buf, nil
}
