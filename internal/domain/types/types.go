// Package types contains common types used across the application
package types

// RankingBasis selects which column a ranking is ordered by.
type RankingBasis string

const (
	// BasisPoint orders by the intra-day point total.
	BasisPoint RankingBasis = "Point"
	// BasisRank orders by the daily rank snapshot.
	BasisRank RankingBasis = "Rank"
)

// Valid reports whether the basis is one of the known values.
func (b RankingBasis) Valid() bool {
	return b == BasisPoint || b == BasisRank
}

// Standing is a user's position in the two independent orderings, computed
// with standard RANK semantics: ties share a position and the next distinct
// value skips accordingly.
type Standing struct {
	PointPosition int
	RankPosition  int
}

// GuildInfo is the public shape served by /api/getservers.
type GuildInfo struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	MemberCount int    `json:"memberCount"`
}
