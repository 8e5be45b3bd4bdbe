package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These match the hashes written by the retired
// service, so every stored credential keeps verifying.
const (
	credentialSaltLen  = 16 // 128 bit
	credentialHashLen  = 32 // 256 bit
	credentialTime     = 2
	credentialMemory   = 100 * 1024 // KiB
	credentialParallel = 8
)

const standardPrefix = "$argon2id$"

// CredentialFormat tags the wire format a stored credential was parsed from.
type CredentialFormat int

const (
	// FormatUnparsable marks input that matched neither format. Verification
	// against it always fails, it never errors.
	FormatUnparsable CredentialFormat = iota
	// FormatStandard is the $-delimited PHC style format. The only format
	// ever produced.
	FormatStandard
	// FormatLegacy is a flat base64(salt||hash) blob written by the retired
	// scheme. Accepted for verification only, with fixed cost parameters.
	FormatLegacy
)

// Credential is the decoded form of a stored password hash, never the
// plaintext. Immutable once verified against; a new registration or reset
// always produces a fresh salt.
type Credential struct {
	Format      CredentialFormat
	Salt        []byte
	Hash        []byte
	Iterations  uint32
	Memory      uint32
	Parallelism uint8
}

// NewCredential derives a Credential for the given password with a fresh
// random salt and the service-wide cost parameters.
func NewCredential(password string) (*Credential, error) {
	if password == "" {
		return nil, ErrNoEmptyString
	}

	salt := make([]byte, credentialSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, goerrors.Wrap(err, ErrRandomSourceUnavailable.Category, ErrRandomSourceUnavailable.Message).
			WithTextCode(ErrRandomSourceUnavailable.TextCode)
	}

	hash := argon2.IDKey([]byte(password), salt, credentialTime, credentialMemory, credentialParallel, credentialHashLen)

	return &Credential{
		Format:      FormatStandard,
		Salt:        salt,
		Hash:        hash,
		Iterations:  credentialTime,
		Memory:      credentialMemory,
		Parallelism: credentialParallel,
	}, nil
}

// String serializes to the standard wire format:
// $argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt-b64>$<hash-b64>
func (c *Credential) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		c.Memory, c.Iterations, c.Parallelism,
		base64.StdEncoding.EncodeToString(c.Salt),
		base64.StdEncoding.EncodeToString(c.Hash),
	)
}

// HashPassword will generate a password hash in the standard format
func HashPassword(password string) (string, error) {
	credential, err := NewCredential(password)
	if err != nil {
		return "", err
	}
	return credential.String(), nil
}

// VerifyPassword validates the given cleartext password against a stored
// credential in either wire format. Parse failures, decode failures and
// parameter range failures all collapse into false so the caller cannot
// distinguish a wrong password from a corrupt hash string. The only error
// path is an empty password.
func VerifyPassword(password, stored string) (bool, error) {
	if password == "" {
		return false, ErrNoEmptyString
	}

	credential := DecodeCredential(stored)
	if credential.Format == FormatUnparsable {
		return false, nil
	}

	computed := argon2.IDKey(
		[]byte(password),
		credential.Salt,
		credential.Iterations,
		credential.Memory,
		credential.Parallelism,
		uint32(len(credential.Hash)),
	)

	return subtle.ConstantTimeCompare(credential.Hash, computed) == 1, nil
}

// DecodeCredential parses a stored credential string into its tagged form.
// Input that matches neither format comes back with FormatUnparsable; this
// function never errors and never logs the material it was handed.
func DecodeCredential(stored string) Credential {
	if strings.HasPrefix(stored, standardPrefix) {
		return decodeStandard(stored)
	}
	return decodeLegacy(stored)
}

func decodeStandard(stored string) Credential {
	unparsable := Credential{Format: FormatUnparsable}

	parts := strings.Split(stored, "$")
	if len(parts) != 6 {
		return unparsable
	}

	// parts[2] is the version tag; tolerated but not enforced, the cost
	// parameters and digest length drive recomputation.
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return unparsable
	}

	memory, iterations, parallelism, ok := parseCostParams(parts[3])
	if !ok {
		return unparsable
	}

	salt, err := decodeBase64Segment(parts[4])
	if err != nil || len(salt) == 0 {
		return unparsable
	}

	hash, err := decodeBase64Segment(parts[5])
	if err != nil || len(hash) == 0 {
		return unparsable
	}

	return Credential{
		Format:      FormatStandard,
		Salt:        salt,
		Hash:        hash,
		Iterations:  iterations,
		Memory:      memory,
		Parallelism: parallelism,
	}
}

func decodeLegacy(stored string) Credential {
	blob, err := decodeBase64Segment(stored)
	if err != nil || len(blob) != credentialSaltLen+credentialHashLen {
		return Credential{Format: FormatUnparsable}
	}

	return Credential{
		Format:      FormatLegacy,
		Salt:        blob[:credentialSaltLen],
		Hash:        blob[credentialSaltLen:],
		Iterations:  credentialTime,
		Memory:      credentialMemory,
		Parallelism: credentialParallel,
	}
}

func parseCostParams(segment string) (memory, iterations uint32, parallelism uint8, ok bool) {
	fields := strings.Split(segment, ",")
	if len(fields) != 3 {
		return 0, 0, 0, false
	}

	m, okM := parseCostField(fields[0], "m", 32)
	t, okT := parseCostField(fields[1], "t", 32)
	p, okP := parseCostField(fields[2], "p", 8)
	if !okM || !okT || !okP || m == 0 || t == 0 || p == 0 {
		return 0, 0, 0, false
	}

	return uint32(m), uint32(t), uint8(p), true
}

func parseCostField(field, key string, bits int) (uint64, bool) {
	value, found := strings.CutPrefix(field, key+"=")
	if !found {
		return 0, false
	}
	n, err := strconv.ParseUint(value, 10, bits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeBase64Segment accepts both the standard and url-safe alphabets, with
// or without padding. Stored salts and hashes were written by more than one
// producer over the years.
func decodeBase64Segment(segment string) ([]byte, error) {
	normalized := strings.ReplaceAll(segment, "-", "+")
	normalized = strings.ReplaceAll(normalized, "_", "/")

	switch len(normalized) % 4 {
	case 2:
		normalized += "=="
	case 3:
		normalized += "="
	}

	return base64.StdEncoding.DecodeString(normalized)
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}

type credentialCodec struct{}

// NewPasswordAuthenticator returns the package's Argon2id codec behind the
// PasswordAuthenticator interface.
func NewPasswordAuthenticator() PasswordAuthenticator {
	return credentialCodec{}
}

func (credentialCodec) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (credentialCodec) VerifyPassword(password, stored string) (bool, error) {
	return VerifyPassword(password, stored)
}
