package app

import "mapveto/internal/domain"

// Audience says where the dispatch layer should deliver a result.
// Errors are always caller-only; Result carries the hint for successes
// (the "waiting on the other team" status is public, for example).
type Audience int

const (
	// AudienceChannel results are announced to the whole channel.
	AudienceChannel Audience = iota
	// AudienceCaller results are shown only to the issuing user.
	AudienceCaller
)

// Result is the structured outcome of a successful operation. Destroy
// reports that the session has finished and must be evicted together
// with its idle timer.
type Result struct {
	Audience Audience
	Payload  any
	Destroy  bool
}

// MatchStarted announces the teams, the pool, and the coin-toss winner.
type MatchStarted struct {
	Team1    string
	Team2    string
	PoolName string
	Winner   string
}

// OrderChosen announces the coin-toss winner's ban-order decision.
type OrderChosen struct {
	Winner      string
	Choice      string // "First" or "Second"
	FirstToBan  string
	SecondToBan string
}

// MapBanned announces a committed ban. When the banning phase is done,
// NextTeam is the first picker; otherwise it is the other banning team.
type MapBanned struct {
	Team         string
	Map          string
	BansComplete bool
	NextTeam     string
}

// MapPicked announces a committed pick. When the picking phase is done,
// both team names are included for the final-pool prompt.
type MapPicked struct {
	Team          string
	Map           string
	Wildcard      bool
	PicksComplete bool
	NextTeam      string
	Team1         string
	Team2         string
}

// FinalPoolPending reports one team's tiebreaker-pool preference while
// the other team has yet to answer.
type FinalPoolPending struct {
	Team    string
	Choice  domain.PoolCategory
	Waiting string
}

// VetoComplete is the full match summary delivered when the tiebreaker
// has been drawn. Maps is played order: the second-to-ban team's pick,
// the first-to-ban team's pick, then the random map.
type VetoComplete struct {
	Team1 string
	Team2 string
	Pool  domain.PoolCategory
	Maps  [3]PlayedMap
	Bans  [2]TeamAction
}

// PlayedMap is one entry of the final map order.
type PlayedMap struct {
	Map      string
	PickedBy string // team name, or "Random" for the tiebreaker
}

// TeamAction attributes a banned map to a team.
type TeamAction struct {
	Team string
	Map  string
}
