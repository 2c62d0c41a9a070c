// Package filter implements the candidate acceptance decision.
package filter

import (
	"context"
	"slices"
	"strings"

	"nature_poster/internal/model"
)

// Reason explains why a candidate was rejected.
type Reason string

// Rejection reasons, in rule order.
const (
	ReasonBadExtension Reason = "bad-extension"
	ReasonDuplicate    Reason = "duplicate"
	ReasonTooLarge     Reason = "too-large"
	ReasonTooLong      Reason = "too-long"
	ReasonUnsafeWord   Reason = "unsafe-content"
)

// Decision is the outcome of evaluating one candidate.
type Decision struct {
	Accepted bool
	Reason   Reason
}

// Accept returns an accepting decision.
func Accept() Decision {
	return Decision{Accepted: true}
}

// Reject returns a rejecting decision with the given reason.
func Reject(r Reason) Decision {
	return Decision{Reason: r}
}

// Policy is the static rule set a candidate is checked against.
// BadWords entries are assumed pre-normalized to lowercase; only the
// candidate's tokens are case-folded during matching, so a word stored
// with uppercase letters never matches.
type Policy struct {
	AllowedExtensions []string
	MaxSizeKB         float64
	MaxDurationSec    int
	BadWords          map[string]struct{}
}

// DefaultPolicy returns the stock acceptance policy with an empty
// bad-word set.
func DefaultPolicy() Policy {
	return Policy{
		AllowedExtensions: model.DefaultExtensions(),
		MaxSizeKB:         model.DefaultMaxSizeKB,
		MaxDurationSec:    model.DefaultMaxDurationSec,
	}
}

// History provides read access to the publish log.
type History interface {
	HasPost(ctx context.Context, sourceID string) (bool, error)
}

// Evaluate checks one candidate against the policy and publish history.
// Rules run in a fixed order, short-circuiting on the first failure:
// extension, duplicate, size, duration, content safety. Size and
// duration bounds are strict (a value exactly at the cap is rejected).
// The only error return is a History failure.
func Evaluate(ctx context.Context, c model.Candidate, p Policy, h History) (Decision, error) {
	if !slices.Contains(p.AllowedExtensions, c.Extension) {
		return Reject(ReasonBadExtension), nil
	}

	dup, err := h.HasPost(ctx, c.SourceID)
	if err != nil {
		return Decision{}, err
	}
	if dup {
		return Reject(ReasonDuplicate), nil
	}

	if c.SizeKB >= p.MaxSizeKB {
		return Reject(ReasonTooLarge), nil
	}

	if c.DurationSec >= p.MaxDurationSec {
		return Reject(ReasonTooLong), nil
	}

	for _, tok := range strings.Fields(c.Description) {
		if _, bad := p.BadWords[strings.ToLower(tok)]; bad {
			return Reject(ReasonUnsafeWord), nil
		}
	}

	return Accept(), nil
}
