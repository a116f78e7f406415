package domain

// Phase represents the lifecycle stage of a veto session. It is never
// stored: every phase is derived from which session fields are
// populated, so state and phase cannot drift apart.
type Phase string

const (
	// PhaseEmpty indicates no match has been started in this channel.
	PhaseEmpty Phase = "empty"
	// PhaseAwaitingOrder indicates teams are set and the coin-toss
	// winner must choose the ban order.
	PhaseAwaitingOrder Phase = "awaiting_order"
	// PhaseBanning indicates one or both bans are outstanding.
	PhaseBanning Phase = "banning"
	// PhasePicking indicates one or both picks are outstanding.
	PhasePicking Phase = "picking"
	// PhaseAwaitingFinal indicates both teams must submit their final
	// map-pool preference.
	PhaseAwaitingFinal Phase = "awaiting_final"
	// PhaseComplete indicates the tiebreaker map has been drawn.
	PhaseComplete Phase = "complete"
)

// Session holds the veto state for one channel. Slot indexes 0 and 1
// correspond to team1 and team2 throughout. Fields are only ever set,
// never cleared; a session is reset by overwriting it wholesale or by
// destroying it.
type Session struct {
	// ID is a correlation identifier for logs, assigned by the store.
	ID string

	// PoolName is the configured pool the match draws from.
	PoolName string

	// Teams are the two sides, assigned once at match start.
	Teams [2]TeamSlot

	// Winner is the coin-toss winner's slot index, set once at start.
	Winner int

	// BanOrder holds slot indexes in banning order (first-to-ban,
	// second-to-ban). Valid only once OrderSet is true.
	BanOrder [2]int
	OrderSet bool

	// Bans and Picks are official map names by slot index; empty
	// string means the slot has not acted yet.
	Bans  [2]string
	Picks [2]string

	// Remaining is the working copy of the registry, shrinking by one
	// map per successful ban and pick.
	Remaining *Registry

	// FinalPool holds each slot's Standard/Wildcard preference for the
	// tiebreaker; empty string means not submitted.
	FinalPool [2]PoolCategory

	// RandomMap is the tiebreaker, drawn once both preferences are in.
	RandomMap string
}

// Started reports whether teams have been assigned.
func (s *Session) Started() bool {
	return s.Teams[0].Name != ""
}

// Phase derives the current phase from the populated fields.
func (s *Session) Phase() Phase {
	switch {
	case !s.Started():
		return PhaseEmpty
	case !s.OrderSet:
		return PhaseAwaitingOrder
	case s.Bans[0] == "" || s.Bans[1] == "":
		return PhaseBanning
	case s.Picks[0] == "" || s.Picks[1] == "":
		return PhasePicking
	case s.RandomMap == "":
		return PhaseAwaitingFinal
	default:
		return PhaseComplete
	}
}

// BanningSlot returns the slot index due to ban next, or -1 when both
// bans are in. Bans run in ban order.
func (s *Session) BanningSlot() int {
	for _, slot := range s.BanOrder {
		if s.Bans[slot] == "" {
			return slot
		}
	}
	return -1
}

// PickingSlot returns the slot index due to pick next, or -1 when both
// picks are in. Picks run in the reverse of ban order: the team that
// banned second picks first.
func (s *Session) PickingSlot() int {
	for i := len(s.BanOrder) - 1; i >= 0; i-- {
		slot := s.BanOrder[i]
		if s.Picks[slot] == "" {
			return slot
		}
	}
	return -1
}

// FirstToBan returns the slot banning first. Valid once OrderSet.
func (s *Session) FirstToBan() int { return s.BanOrder[0] }

// SecondToBan returns the slot banning second. Valid once OrderSet.
func (s *Session) SecondToBan() int { return s.BanOrder[1] }

// SlotFor returns the first slot index the caller is a member of, or -1.
// In mirror and Mixed matches a caller can match both slots; team1 wins,
// matching the original deployment's behavior.
func (s *Session) SlotFor(c Caller) int {
	for i, t := range s.Teams {
		if t.HasMember(c) {
			return i
		}
	}
	return -1
}
