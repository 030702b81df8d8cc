package ledger

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// addressHexLen is the fixed width of a ledger address: 20 bytes, 40 hex digits.
const addressHexLen = 40

// Record is the fixed-shape tuple anchored on the ledger for every access
// decision. It is a compact representation of an access log entry: enough to
// detect tampering with the off-chain record, small enough to keep anchoring
// cheap.
type Record struct {
	ControllerAddress string `json:"controller"`
	SubjectAddress    string `json:"subject"`
	PurposeHash       string `json:"purposeHash"`
	Action            string `json:"action"`
	Permitted         bool   `json:"permitted"`
	PolicyGroupID     string `json:"policyGroupId"`
	PolicyVersion     int64  `json:"policyVersion"`
	Timestamp         int64  `json:"timestamp"`
}

// DeriveAddress maps an identifier to a fixed 20-byte ledger address.
// Numeric identifiers (tax IDs, controller registration numbers) become
// their hexadecimal representation left-padded to 40 digits. Non-numeric
// identifiers fall back to the trailing 20 bytes of their Keccak-256 digest.
// The mapping is stable in the id → address direction only; it stands in for
// a real key-registration scheme.
func DeriveAddress(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("derive address: empty identifier")
	}

	if n, ok := new(big.Int).SetString(id, 10); ok && n.Sign() >= 0 {
		h := n.Text(16)
		if len(h) > addressHexLen {
			return "", fmt.Errorf("derive address: identifier %q exceeds 20 bytes", id)
		}
		return "0x" + strings.Repeat("0", addressHexLen-len(h)) + h, nil
	}

	digest := keccak256([]byte(id))
	return "0x" + hex.EncodeToString(digest[12:]), nil
}

// HashPurpose produces the 32-byte digest of a processing purpose stored on
// the ledger. Purposes are compared case-insensitively, so the digest is
// computed over the lower-cased, trimmed text.
func HashPurpose(purpose string) string {
	digest := keccak256([]byte(strings.ToLower(strings.TrimSpace(purpose))))
	return hex.EncodeToString(digest)
}

// EqualAddress compares two ledger addresses ignoring hex case and the
// optional 0x prefix.
func EqualAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "0x"), strings.TrimPrefix(b, "0x"))
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
