package domain

import "time"

// EmailChangeState is the position of an email change request in its flow
type EmailChangeState int

const (
	// EmailChangeRequested: codes sent, nothing verified yet
	EmailChangeRequested EmailChangeState = iota
	// EmailChangeOldVerified: current address confirmed, waiting for the new one
	EmailChangeOldVerified
	// EmailChangeApplied: new address confirmed and written to the user
	EmailChangeApplied
)

func (s EmailChangeState) String() string {
	switch s {
	case EmailChangeRequested:
		return "requested"
	case EmailChangeOldVerified:
		return "old_verified"
	case EmailChangeApplied:
		return "applied"
	}
	return "unknown"
}

// EmailChangeRequest is a user's pending two-sided email change
type EmailChangeRequest struct {
	ID        uint
	UserID    uint
	OldEmail  string
	NewEmail  string
	OTPOld    string
	OTPNew    string
	State     EmailChangeState
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewEmailChangeRequest starts a request in the Requested state
func NewEmailChangeRequest(userID uint, oldEmail, newEmail, otpOld, otpNew string, now time.Time, ttl time.Duration) *EmailChangeRequest {
	return &EmailChangeRequest{
		UserID:    userID,
		OldEmail:  oldEmail,
		NewEmail:  newEmail,
		OTPOld:    otpOld,
		OTPNew:    otpNew,
		State:     EmailChangeRequested,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the request can no longer be verified at now
func (r *EmailChangeRequest) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// VerifiedOld reports whether the current address has been confirmed
func (r *EmailChangeRequest) VerifiedOld() bool {
	return r.State >= EmailChangeOldVerified
}

// VerifiedNew reports whether the new address has been confirmed
func (r *EmailChangeRequest) VerifiedNew() bool {
	return r.State == EmailChangeApplied
}

// VerifyOld confirms the current address. Expiry is checked before the code so
// an expired request is always reported as such.
func (r *EmailChangeRequest) VerifyOld(code string, now time.Time) error {
	if r.State != EmailChangeRequested {
		return ErrNoPendingRequest
	}
	if r.Expired(now) {
		return ErrOTPExpired
	}
	if code != r.OTPOld {
		return ErrOTPInvalid
	}
	r.State = EmailChangeOldVerified
	return nil
}

// VerifyNew confirms the new address. It is only legal after VerifyOld.
func (r *EmailChangeRequest) VerifyNew(code string, now time.Time) error {
	switch r.State {
	case EmailChangeRequested:
		return ErrOldEmailNotVerified
	case EmailChangeApplied:
		return ErrNoPendingRequest
	}
	if r.Expired(now) {
		return ErrOTPExpired
	}
	if code != r.OTPNew {
		return ErrOTPInvalid
	}
	r.State = EmailChangeApplied
	return nil
}

// EmailChangeStateFromFlags rebuilds the state from persisted flags. A row with
// verified_new set but verified_old unset cannot be produced by the flow and is
// treated as freshly requested.
func EmailChangeStateFromFlags(verifiedOld, verifiedNew bool) EmailChangeState {
	switch {
	case verifiedOld && verifiedNew:
		return EmailChangeApplied
	case verifiedOld:
		return EmailChangeOldVerified
	default:
		return EmailChangeRequested
	}
}
