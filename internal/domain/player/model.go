package player

import (
	"strings"
	"time"
)

// Player is a registered competitor. Privileged players administer the
// competition and are excluded from the leaderboard.
type Player struct {
	ID          string
	DisplayName string
	Privileged  bool
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// Principal is the identity resolved for an authenticated request.
type Principal struct {
	PlayerID    string
	DisplayName string
	Privileged  bool
}

func (p Principal) Name() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return p.PlayerID
}
