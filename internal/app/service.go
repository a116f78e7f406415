package app

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"mapveto/internal/domain"
)

// WildcardSentinel invokes a random wildcard pick instead of naming a
// map. Matched as a substring so autocomplete decorations survive.
const WildcardSentinel = "INVOKE WILDCARD"

// Operation failures by taxonomy kind. Every error leaves the session
// unchanged and is caller-only; callers test with errors.Is and show the
// wrapped detail text.
var (
	ErrUnknownTeam   = errors.New("unknown team")
	ErrNotAuthorized = errors.New("not authorized")
	ErrWrongPhase    = errors.New("wrong phase")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrInvalidMap    = errors.New("invalid map")
	ErrAlreadyActed  = errors.New("already acted")
	ErrNoMoreActions = errors.New("no more actions")
	ErrEmptyPool     = errors.New("no maps left in pool")
)

// PoolSource provides named map pools. Lookup failures carry
// domain.ErrPoolNotFound or domain.ErrPoolMalformed.
type PoolSource interface {
	Pool(name string) (*domain.Registry, error)
}

// Service implements the veto use-cases over a session. Callers must
// serialize access to any one session (the store does); the internal
// mutex only guards the shared random source across sessions.
type Service struct {
	teams *domain.Directory
	pools PoolSource

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(teams *domain.Directory, pools PoolSource, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{teams: teams, pools: pools, rng: rng}
}

// Teams exposes the registered team directory, e.g. for autocomplete.
func (s *Service) Teams() *domain.Directory {
	return s.teams
}

// draw returns a uniform index in [0, n).
func (s *Service) draw(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// StartMatch resolves both teams, loads the named pool, and overwrites
// the session: teams assigned, coin toss performed, remaining maps reset
// to the full registry, everything else cleared. Identical resolved
// teams become a mirror match with " A"/" B" suffixed slots.
func (s *Service) StartMatch(sess *domain.Session, team1, team2, poolName string, c domain.Caller) (*Result, error) {
	resolved1, ok1 := s.teams.Resolve(team1)
	resolved2, ok2 := s.teams.Resolve(team2)
	if !ok1 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, team1)
	}
	if !ok2 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, team2)
	}

	reg, err := s.pools.Pool(poolName)
	if err != nil {
		return nil, err
	}

	if !c.Admin && resolved1 != domain.MixedTeam && resolved2 != domain.MixedTeam {
		if !contains(s.teams.CallerTeams(c.Roles), resolved1, resolved2) {
			return nil, fmt.Errorf("%w: you must belong to one of the selected teams, or pick %q", ErrNotAuthorized, domain.MixedTeam)
		}
	}

	slot1 := domain.TeamSlot{Name: resolved1, Base: resolved1}
	slot2 := domain.TeamSlot{Name: resolved2, Base: resolved2}
	if resolved1 == resolved2 {
		slot1.Name = resolved1 + " A"
		slot2.Name = resolved2 + " B"
	}

	*sess = domain.Session{
		ID:        sess.ID,
		PoolName:  poolName,
		Teams:     [2]domain.TeamSlot{slot1, slot2},
		Winner:    s.draw(2),
		Remaining: reg.Clone(),
	}

	return &Result{
		Audience: AudienceChannel,
		Payload: MatchStarted{
			Team1:    slot1.Name,
			Team2:    slot2.Name,
			PoolName: poolName,
			Winner:   sess.Teams[sess.Winner].Name,
		},
	}, nil
}

// SetBanOrder records the coin-toss winner's choice of banning first or
// second. Only a member of the winning team (or an admin) may decide,
// and the order is immutable once set.
func (s *Service) SetBanOrder(sess *domain.Session, choice string, c domain.Caller) (*Result, error) {
	if !sess.Started() {
		return nil, fmt.Errorf("%w: no coin toss winner yet, start a match first", ErrWrongPhase)
	}
	if sess.OrderSet {
		return nil, fmt.Errorf("%w: the ban order has already been decided", ErrWrongPhase)
	}
	winner := sess.Teams[sess.Winner]
	if !c.Admin && !winner.HasMember(c) {
		return nil, fmt.Errorf("%w: only a member of %s or an admin can decide the ban order", ErrNotAuthorized, winner.Name)
	}

	var first bool
	switch {
	case strings.EqualFold(choice, "First"):
		first = true
	case strings.EqualFold(choice, "Second"):
		first = false
	default:
		return nil, fmt.Errorf("%w: choose either First or Second", ErrInvalidChoice)
	}

	loser := 1 - sess.Winner
	if first {
		sess.BanOrder = [2]int{sess.Winner, loser}
	} else {
		sess.BanOrder = [2]int{loser, sess.Winner}
	}
	sess.OrderSet = true

	return &Result{
		Audience: AudienceChannel,
		Payload: OrderChosen{
			Winner:      winner.Name,
			Choice:      orderWord(first),
			FirstToBan:  sess.Teams[sess.FirstToBan()].Name,
			SecondToBan: sess.Teams[sess.SecondToBan()].Name,
		},
	}, nil
}

func orderWord(first bool) string {
	if first {
		return "First"
	}
	return "Second"
}

// BanMap commits the current banning team's ban. The map must resolve
// to a remaining Standard map.
func (s *Service) BanMap(sess *domain.Session, mapName string, c domain.Caller) (*Result, error) {
	if !sess.OrderSet {
		return nil, fmt.Errorf("%w: the ban order has not been decided yet", ErrWrongPhase)
	}
	slot := sess.BanningSlot()
	if slot < 0 {
		return nil, fmt.Errorf("%w: both teams have already banned", ErrNoMoreActions)
	}
	team := sess.Teams[slot]
	if !c.Admin && !team.HasMember(c) {
		return nil, fmt.Errorf("%w: only %s can ban right now", ErrNotAuthorized, team.Name)
	}

	official, err := s.resolveStandard(sess, mapName)
	if err != nil {
		return nil, err
	}

	sess.Bans[slot] = official
	sess.Remaining.Remove(official)

	done := sess.BanningSlot() < 0
	next := sess.Teams[sess.SecondToBan()].Name // first picker once bans complete
	if !done {
		next = sess.Teams[sess.BanningSlot()].Name
	}

	return &Result{
		Audience: AudienceChannel,
		Payload: MapBanned{
			Team:         team.Name,
			Map:          official,
			BansComplete: done,
			NextTeam:     next,
		},
	}, nil
}

// PickMap commits the current picking team's pick: either a named map
// from the remaining Standard pool, or a uniform random draw from the
// remaining Wildcard pool when the wildcard is invoked.
func (s *Service) PickMap(sess *domain.Session, mapName string, c domain.Caller) (*Result, error) {
	if !sess.OrderSet || sess.BanningSlot() >= 0 {
		return nil, fmt.Errorf("%w: teams must complete the banning phase first", ErrWrongPhase)
	}
	slot := sess.PickingSlot()
	if slot < 0 {
		return nil, fmt.Errorf("%w: both teams have already picked", ErrNoMoreActions)
	}
	team := sess.Teams[slot]
	if !c.Admin && !team.HasMember(c) {
		return nil, fmt.Errorf("%w: only %s can pick a map right now", ErrNotAuthorized, team.Name)
	}
	if sess.Picks[slot] != "" {
		return nil, fmt.Errorf("%w: %s has already picked %s", ErrAlreadyActed, team.Name, sess.Picks[slot])
	}

	var official string
	wildcard := strings.Contains(strings.ToUpper(mapName), WildcardSentinel)
	if wildcard {
		pool := sess.Remaining.InCategory(domain.CategoryWildcard)
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: no Wildcard maps remain to invoke", ErrEmptyPool)
		}
		official = pool[s.draw(len(pool))]
	} else {
		var err error
		if official, err = s.resolveStandard(sess, mapName); err != nil {
			return nil, err
		}
	}

	sess.Picks[slot] = official
	sess.Remaining.Remove(official)

	done := sess.PickingSlot() < 0
	var next string
	if !done {
		next = sess.Teams[sess.PickingSlot()].Name
	}

	return &Result{
		Audience: AudienceChannel,
		Payload: MapPicked{
			Team:          team.Name,
			Map:           official,
			Wildcard:      wildcard,
			PicksComplete: done,
			NextTeam:      next,
			Team1:         sess.Teams[0].Name,
			Team2:         sess.Teams[1].Name,
		},
	}, nil
}

// SetFinalPool records the caller's team preference for the tiebreaker
// pool. A team may overwrite its own earlier preference. Once both are
// in, the pool is Wildcard only if both chose Wildcard, the tiebreaker
// is drawn, and the session completes.
func (s *Service) SetFinalPool(sess *domain.Session, choice string, c domain.Caller) (*Result, error) {
	if !c.Admin && sess.SlotFor(c) < 0 {
		return nil, fmt.Errorf("%w: you must belong to one of the opposing teams", ErrNotAuthorized)
	}
	if !sess.OrderSet || sess.BanningSlot() >= 0 {
		return nil, fmt.Errorf("%w: teams must complete the banning phase first", ErrWrongPhase)
	}
	if sess.PickingSlot() >= 0 {
		return nil, fmt.Errorf("%w: teams must complete the picking phase first", ErrWrongPhase)
	}

	cat, ok := domain.ParseCategory(choice)
	if !ok {
		return nil, fmt.Errorf("%w: choose either Standard or Wildcard", ErrInvalidChoice)
	}

	slot := sess.SlotFor(c)
	if slot < 0 {
		// Admin acting for neither team records against team2,
		// mirroring the original deployment.
		slot = 1
	}
	sess.FinalPool[slot] = cat

	other := 1 - slot
	if sess.FinalPool[other] == "" {
		return &Result{
			Audience: AudienceChannel,
			Payload: FinalPoolPending{
				Team:    sess.Teams[slot].Name,
				Choice:  cat,
				Waiting: sess.Teams[other].Name,
			},
		}, nil
	}

	agreed := domain.CategoryStandard
	if sess.FinalPool[0] == domain.CategoryWildcard && sess.FinalPool[1] == domain.CategoryWildcard {
		agreed = domain.CategoryWildcard
	}
	pool := sess.Remaining.InCategory(agreed)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no maps left in the %s map pool to choose from", ErrEmptyPool, agreed)
	}
	sess.RandomMap = pool[s.draw(len(pool))]

	firstPicker := sess.SecondToBan()
	secondPicker := sess.FirstToBan()

	return &Result{
		Audience: AudienceChannel,
		Destroy:  true,
		Payload: VetoComplete{
			Team1: sess.Teams[0].Name,
			Team2: sess.Teams[1].Name,
			Pool:  agreed,
			Maps: [3]PlayedMap{
				{Map: sess.Picks[firstPicker], PickedBy: sess.Teams[firstPicker].Name},
				{Map: sess.Picks[secondPicker], PickedBy: sess.Teams[secondPicker].Name},
				{Map: sess.RandomMap, PickedBy: "Random"},
			},
			Bans: [2]TeamAction{
				{Team: sess.Teams[0].Name, Map: sess.Bans[0]},
				{Team: sess.Teams[1].Name, Map: sess.Bans[1]},
			},
		},
	}, nil
}

// resolveStandard resolves mapName against the remaining Standard maps.
// Banned and picked maps are gone from the remaining set, so they fail
// resolution here.
func (s *Service) resolveStandard(sess *domain.Session, mapName string) (string, error) {
	official, ok := sess.Remaining.Resolve(mapName)
	if ok {
		if cat, _ := sess.Remaining.Category(official); cat == domain.CategoryStandard {
			return official, nil
		}
	}
	return "", fmt.Errorf("%w: choose a remaining map from the Standard pool: %s",
		ErrInvalidMap, strings.Join(sess.Remaining.InCategory(domain.CategoryStandard), ", "))
}

func contains(haystack []string, wanted ...string) bool {
	for _, h := range haystack {
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}
