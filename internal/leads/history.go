package leads

import (
	"fmt"
	"sort"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
)

// SortHistoryDesc orders entries, given in append order, most recent first.
// Entries sharing a timestamp come out in reverse append order.
func SortHistoryDesc(entries []StatusHistoryEntry) {
	reverse(entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// VerifyHistoryChain replays history oldest first and checks that every
// entry starts where the previous one ended, that the first entry leaves
// New, and that the last entry lands on the lead's current status.
// history is expected in append order.
func VerifyHistoryChain(lead *Lead, history []StatusHistoryEntry) error {
	if lead == nil {
		return ErrLeadNotFound
	}
	ordered := make([]StatusHistoryEntry, len(history))
	copy(ordered, history)
	SortHistoryDesc(ordered)
	reverse(ordered)

	current := StatusNew
	for i, entry := range ordered {
		if entry.LeadID != "" && entry.LeadID != lead.ID {
			return chainError(fmt.Sprintf("entry %s belongs to lead %s", entry.ID, entry.LeadID))
		}
		if entry.FromStatus != current {
			return chainError(fmt.Sprintf("entry %d moves from %q but lead was %q", i, entry.FromStatus, current))
		}
		current = entry.ToStatus
	}
	if current != lead.Status {
		return chainError(fmt.Sprintf("history ends at %q but lead is %q", current, lead.Status))
	}
	return nil
}

func chainError(detail string) error {
	return &apperr.Error{
		Kind: apperr.KindConsistency,
		Op:   "leads: verify history",
		Msg:  ErrBrokenHistory.Msg,
		Err:  fmt.Errorf("%s", detail),
	}
}

func reverse(entries []StatusHistoryEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
