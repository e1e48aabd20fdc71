package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainSnapshot prefixes snapshot fingerprints.
// Version suffix enables future algorithm migration.
const DomainSnapshot = "pkb/snapshot/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the content fingerprint of an encoded snapshot body.
func Fingerprint(body []byte) string {
	return hashWithDomain(DomainSnapshot, body)
}
