package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/jqcty/internal/native"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainInput  = "jqcty/input/v1"
	DomainResult = "jqcty/result/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InputHash identifies an input document independent of map key order.
func InputHash(input native.Value) (string, error) {
	canonical, err := native.MarshalCanonical(input)
	if err != nil {
		return "", fmt.Errorf("InputHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInput, canonical), nil
}

// ResultKey identifies the result of running program in language over
// input. Inputs that encode to the same canonical JSON share a key.
func ResultKey(language, program string, input native.Value) (string, error) {
	obj := native.NewMap(
		native.E("language", native.String(language)),
		native.E("program", native.String(program)),
		native.E("input", input),
	)

	canonical, err := native.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ResultKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}
