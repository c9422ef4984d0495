// Package model contains domain models passed between layers.
package model

import "math"

// User is the persisted record for one Discord user. Exactly one row exists
// per ID; identity fields are denormalized snapshots of the user's gateway
// profile, refreshed on every scoring write.
type User struct {
	ID          string // Discord snowflake, stable per user
	Username    string
	DisplayName string
	Icon        string // avatar URL snapshot
	Point       int    // accumulates within the current event day
	Rank        int    // coarse snapshot, recomputed at daily rollover
}

// Rollover returns the user as it should be written at the daily reset:
// rank becomes round(point/10) and point resets to zero. Halves round to
// even, so 45 points become rank 4 and 55 become rank 6.
func (u User) Rollover() User {
	u.Rank = int(math.RoundToEven(float64(u.Point) / 10))
	u.Point = 0
	return u
}

// Profile is the identity snapshot carried on score events.
type Profile struct {
	ID          string
	Username    string
	DisplayName string
	Icon        string
}

// Apply refreshes the user's identity fields from the snapshot.
func (p Profile) Apply(u User) User {
	u.Username = p.Username
	u.DisplayName = p.DisplayName
	u.Icon = p.Icon
	return u
}

// NewUser builds a first-time user record from a profile and an initial
// award. Rank starts at zero until the first rollover.
func NewUser(p Profile, award int) User {
	return User{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Icon:        p.Icon,
		Point:       award,
		Rank:        0,
	}
}
