// Package access holds the download authorization rules as one
// prioritized rule list: the first applicable outcome wins, and every
// later rule assumes the earlier ones passed.
package access

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"filevault-api/internal/domain/file"
)

type Outcome int

const (
	Allow Outcome = iota
	Deny
	Defer
)

type Reason string

const (
	ReasonExpired           Reason = "expired"
	ReasonNotYetAvailable   Reason = "not_yet_available"
	ReasonAuthRequired      Reason = "authentication_required"
	ReasonAccessDenied      Reason = "access_denied"
	ReasonPasswordRequired  Reason = "password_required"
	ReasonIncorrectPassword Reason = "incorrect_password"
)

type Decision struct {
	Outcome Outcome
	Reason  Reason
	// RetryAfter is set only for deferrals: time left until the
	// record's window opens.
	RetryAfter time.Duration
}

func allow() Decision        { return Decision{Outcome: Allow} }
func deny(r Reason) Decision { return Decision{Outcome: Deny, Reason: r} }

func deferred(wait time.Duration) Decision {
	return Decision{Outcome: Defer, Reason: ReasonNotYetAvailable, RetryAfter: wait}
}

// Decide evaluates a download request against a record. Pure predicate:
// no side effects, the caller records the outcome.
//
// Rule order, first match wins:
//  1. expired denies everyone, owner included — cleanup may reclaim the
//     record at any point past its window.
//  2. pending defers non-owners; the owner may preview early.
//  3. visibility: a share list restricts to its members plus the owner
//     regardless of the public flag; a private record without a share
//     list is owner-only; either gate requires authentication first.
//  4. password: non-owners must present the matching secret.
func Decide(f *file.File, requester *file.Identity, password *string, now time.Time) Decision {
	switch f.Status(now) {
	case file.StatusExpired:
		return deny(ReasonExpired)
	case file.StatusPending:
		if !f.IsOwner(requester) {
			return deferred(f.AvailableFrom.Sub(now))
		}
	}

	if !f.IsOwner(requester) {
		if f.Restricted() && requester == nil {
			return deny(ReasonAuthRequired)
		}
		if len(f.SharedWith) > 0 {
			if !f.IsSharedWith(*requester) {
				return deny(ReasonAccessDenied)
			}
		} else if !f.IsPublic {
			return deny(ReasonAccessDenied)
		}

		if f.PasswordHash != nil {
			if password == nil || *password == "" {
				return deny(ReasonPasswordRequired)
			}
			if bcrypt.CompareHashAndPassword([]byte(*f.PasswordHash), []byte(*password)) != nil {
				return deny(ReasonIncorrectPassword)
			}
		}
	}

	return allow()
}
