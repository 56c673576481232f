// README: Actor credential issuance and verification.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"payana/internal/apperrors"
	"payana/internal/types"
)

type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
)

// CredentialSource resolves the stored credential for an identity.
// Implementations return apperrors.ErrNotFound for unknown identities.
type CredentialSource interface {
	Credential(ctx context.Context, id types.ID) (string, error)
}

type Verifier struct {
	riders  CredentialSource
	drivers CredentialSource
}

func NewVerifier(riders, drivers CredentialSource) *Verifier {
	return &Verifier{riders: riders, drivers: drivers}
}

// Verify confirms that the presented credential matches the stored credential
// for the claimed identity. An unknown or malformed identity surfaces as a
// single not-found condition; a mismatch or missing credential is terminal
// and must not be retried with the same value.
func (v *Verifier) Verify(ctx context.Context, role Role, id types.ID, presented string) error {
	if presented == "" {
		return fmt.Errorf("%w: missing credential", apperrors.ErrUnauthorized)
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("%w: %s %q", apperrors.ErrNotFound, role, id)
	}

	var source CredentialSource
	switch role {
	case RoleRider:
		source = v.riders
	case RoleDriver:
		source = v.drivers
	default:
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrNotFound, role)
	}

	stored, err := source.Credential(ctx, id)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return fmt.Errorf("%w: credential mismatch for %s %s", apperrors.ErrUnauthorized, role, id)
	}
	return nil
}

// NewCredential returns a fresh secret token: 16 random bytes, hex encoded.
func NewCredential() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
