package qlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"
)

// ErrInvalidArgument is returned for a non-positive dimension or an identity
// that is not valid UTF-8.
var ErrInvalidArgument = errors.New("invalid argument")

// saltSeparator joins identity and salt before hashing.
const saltSeparator = "::"

type embedOptions struct {
	salt string
}

// EmbedOption configures Embed.
type EmbedOption func(*embedOptions)

// WithSalt mixes salt into the hashed message. An empty salt is ignored.
func WithSalt(salt string) EmbedOption {
	return func(o *embedOptions) {
		o.salt = salt
	}
}

/*
Embed maps an identity string to a deterministic real vector of length dim.

The SHA-256 digest of the identity (joined with the salt, if any) is tiled
until it covers dim entries, each byte becomes one float64, and the result is
standardised to zero mean and unit population variance. A vector whose
entries are all equal is returned mean-centred, i.e. all zeros.

Parameters:
  - identity: arbitrary UTF-8 text, used only as hash input
  - dim: the vector length, must be positive

Returns:
  - []float64: the embedding, bit-identical for identical inputs
  - error: ErrInvalidArgument for dim <= 0 or invalid UTF-8
*/
func Embed(identity string, dim int, opts ...EmbedOption) ([]float64, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidArgument, dim)
	}
	if !utf8.ValidString(identity) {
		return nil, fmt.Errorf("%w: identity is not valid UTF-8", ErrInvalidArgument)
	}

	var o embedOptions
	for _, opt := range opts {
		opt(&o)
	}

	message := identity
	if o.salt != "" {
		message += saltSeparator + o.salt
	}
	digest := sha256.Sum256([]byte(message))

	vec := make([]float64, dim)
	for i := range vec {
		vec[i] = float64(digest[i%len(digest)])
	}
	return standardise(vec), nil
}

// standardise rescales vec in place to zero mean and unit population variance.
func standardise(vec []float64) []float64 {
	mean, std := stat.PopMeanStdDev(vec, nil)
	for i := range vec {
		vec[i] -= mean
	}
	if std == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= std
	}
	return vec
}

// IdentityHash is a short, non-reversible fingerprint for logs and audit records.
func IdentityHash(identity string) string {
	digest := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(digest[:])[:16]
}

// Fingerprint is the full hex SHA-256 of the identity.
func Fingerprint(identity string) string {
	digest := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(digest[:])
}
