package leads

// TransitionPolicy decides whether a lead may move between two statuses.
type TransitionPolicy interface {
	Allow(from, to Status) error
}

// OpenPolicy lets a lead move from any status to any other valid status.
// Admins set the status directly from the edit form.
type OpenPolicy struct{}

func (OpenPolicy) Allow(_, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// TerminalLockPolicy treats Closed Won and Closed Lost as final.
type TerminalLockPolicy struct{}

func (TerminalLockPolicy) Allow(from, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if from.IsClosed() && from != to {
		return ErrStatusLocked
	}
	return nil
}
