package service

import "github.com/pawlurking/greencop/internal/model"

// The report lifecycle only moves forward: once a collector has picked up a
// report it never reverts to pending, and verified is terminal. A pending
// report may go straight to collected when a collector skips claiming it.
var allowedTransitions = map[model.ReportStatus][]model.ReportStatus{
	model.ReportStatusPending:    {model.ReportStatusInProgress, model.ReportStatusCollected},
	model.ReportStatusInProgress: {model.ReportStatusCollected},
	model.ReportStatusCollected:  {model.ReportStatusVerified},
	model.ReportStatusVerified:   {},
}

// ValidStatus reports whether s is a known report status.
func ValidStatus(s model.ReportStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether to is a legal next status after from.
// A same-status repeat is not a transition; callers treat it as a no-op.
func CanTransition(from, to model.ReportStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
