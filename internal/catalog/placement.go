package catalog

// ValidatePlacement checks that candidate can join an event whose packages are
// existing. existing may include candidate itself when editing; entries with the
// candidate's id are ignored.
func ValidatePlacement(existing []Package, candidate Package) error {
	if !candidate.Tier.Valid() {
		return ErrInvalidTier
	}
	others := 0
	for _, p := range existing {
		if p.EventID != candidate.EventID {
			continue
		}
		if candidate.ID != "" && p.ID == candidate.ID {
			continue
		}
		if p.Tier == candidate.Tier {
			return ErrTierTaken
		}
		others++
	}
	if others >= MaxPackagesPerEvent {
		return ErrEventFull
	}
	return nil
}

// UsedTiers lists the tiers already taken for eventID.
func UsedTiers(existing []Package, eventID string) map[Tier]bool {
	used := make(map[Tier]bool, MaxPackagesPerEvent)
	for _, p := range existing {
		if p.EventID == eventID {
			used[p.Tier] = true
		}
	}
	return used
}

// AvailableTiers lists, in display order, the tiers still free for eventID.
func AvailableTiers(existing []Package, eventID string) []Tier {
	used := UsedTiers(existing, eventID)
	var free []Tier
	for _, t := range tierOrder {
		if !used[t] {
			free = append(free, t)
		}
	}
	return free
}

// FirstAvailableTier is the default tier offered when creating a package.
// It falls back to Standard when every tier is taken.
func FirstAvailableTier(existing []Package, eventID string) Tier {
	if free := AvailableTiers(existing, eventID); len(free) > 0 {
		return free[0]
	}
	return TierStandard
}
