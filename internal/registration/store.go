package registration

import (
	"context"
	"time"

	id "clubgate/pkg/domain"
)

// RedeemOutcome describes what a Redeem call did.
type RedeemOutcome int

const (
	// RedeemedFresh means this call flipped the registration to confirmed.
	RedeemedFresh RedeemOutcome = iota
	// AlreadyConfirmed means the token was consumed earlier; redeeming again
	// is a harmless no-op.
	AlreadyConfirmed
)

func (o RedeemOutcome) String() string {
	if o == RedeemedFresh {
		return "redeemed"
	}
	return "already_confirmed"
}

// Store persists pending registrations.
//
// Implementations return sentinel errors (pkg/platform/sentinel): ErrConflict
// for duplicate email or token, ErrNotFound for missing rows, ErrExpired for
// lapsed tokens. The service translates those into coded domain errors.
//
// Redeem is the one conditional write: it must flip confirmed false→true at
// most once per token, even under concurrent redemption. Exactly one caller
// observes RedeemedFresh; everyone else gets AlreadyConfirmed.
type Store interface {
	Create(ctx context.Context, reg *PendingRegistration) error
	FindByEmail(ctx context.Context, email string) (*PendingRegistration, error)
	FindByToken(ctx context.Context, token string) (*PendingRegistration, error)
	Redeem(ctx context.Context, token string, now time.Time) (RedeemOutcome, error)
	ExtendExpiry(ctx context.Context, email string, now time.Time) error
	Approve(ctx context.Context, email string, role id.Role, now time.Time) error
	Delete(ctx context.Context, email string) error
	ListPending(ctx context.Context) ([]*PendingRegistration, error)
}
