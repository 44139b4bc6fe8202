// Package plan holds the subscription policy table. Everything here is
// pure: limits and feature gates are evaluated against counts the caller
// reads fresh from the store, never against token claims.
package plan

import (
	"fmt"

	"github.com/boardly/boardly-server/internal/models"
)

// ResourceKind enumerates the quota-limited resource kinds.
type ResourceKind string

const (
	KindBoard ResourceKind = "board"
	KindDecor ResourceKind = "decor"
	KindFrame ResourceKind = "frame"
)

// Unlimited marks a quota with no numeric cap.
const Unlimited = -1

// LimitError is a human-readable plan denial.
type LimitError struct {
	Plan   string
	Kind   ResourceKind
	Limit  int
	Reason string
}

func (e *LimitError) Error() string {
	return e.Reason
}

type quota struct {
	boards int
	decor  int
	frames int

	download bool
	share    bool
	reset    bool
	upload   bool
}

// The policy table. Pro keeps its decor quota unlimited but has uploads
// disabled outright, which is why upload is a separate gate.
var quotas = map[string]quota{
	models.PlanBasic:   {boards: 2, decor: 2, frames: 0, upload: true},
	models.PlanPro:     {boards: 5, decor: Unlimited, frames: 1, download: true, reset: true},
	models.PlanProPlus: {boards: Unlimited, decor: Unlimited, frames: Unlimited, download: true, share: true, reset: true, upload: true},
}

// CheckLimit reports whether a user on the given plan may create one more
// resource of the given kind, given how many they currently have. A nil
// return means allowed; otherwise the error carries the denial reason.
func CheckLimit(plan string, kind ResourceKind, currentCount int) error {
	q, ok := quotas[plan]
	if !ok {
		return &LimitError{Plan: plan, Kind: kind, Reason: fmt.Sprintf("unknown plan %q", plan)}
	}

	var limit int
	switch kind {
	case KindBoard:
		limit = q.boards
	case KindDecor:
		limit = q.decor
	case KindFrame:
		limit = q.frames
	default:
		return &LimitError{Plan: plan, Kind: kind, Reason: fmt.Sprintf("unknown resource kind %q", kind)}
	}

	if limit == Unlimited || currentCount < limit {
		return nil
	}

	return &LimitError{
		Plan:   plan,
		Kind:   kind,
		Limit:  limit,
		Reason: fmt.Sprintf("%s plan allows at most %d %ss; you already have %d", plan, limit, kind, currentCount),
	}
}

// CanDownload reports whether the plan permits board downloads.
func CanDownload(plan string) bool { return quotas[plan].download }

// CanShare reports whether the plan permits issuing share links.
func CanShare(plan string) bool { return quotas[plan].share }

// CanReset reports whether the plan permits archive-and-reset.
func CanReset(plan string) bool { return quotas[plan].reset }

// CanUpload reports whether the plan permits decor uploads at all,
// independent of the decor count quota.
func CanUpload(plan string) bool { return quotas[plan].upload }
