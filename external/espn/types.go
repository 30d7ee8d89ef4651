package espn

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
)

type scoreboardEnvelope struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	HomeAway string    `json:"homeAway"`
	Team     teamRef   `json:"team"`
	Score    flexScore `json:"score"`
}

type teamRef struct {
	DisplayName string `json:"displayName"`
}

// flexScore accepts a score sent as a JSON string or number. Absent or
// unparsable scores read as zero.
type flexScore int

func (s *flexScore) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*s = 0
		return nil
	}
	text := strings.Trim(string(raw), `"`)
	text = strings.TrimSpace(text)
	if text == "" {
		*s = 0
		return nil
	}
	if v, err := strconv.Atoi(text); err == nil {
		*s = flexScore(v)
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		*s = flexScore(int(f))
		return nil
	}
	*s = 0
	return nil
}

func (e scoreboardEnvelope) records() []result.External {
	out := make([]result.External, 0, len(e.Events))
	for _, ev := range e.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		home, away, ok := homeAndAway(ev.Competitions[0].Competitors)
		if !ok {
			continue
		}
		out = append(out, result.External{
			HomeTeam:  strings.TrimSpace(home.Team.DisplayName),
			AwayTeam:  strings.TrimSpace(away.Team.DisplayName),
			HomeScore: int(home.Score),
			AwayScore: int(away.Score),
		})
	}
	return out
}

// homeAndAway reads the homeAway tags, falling back to the scoreboard's
// away-first ordering.
func homeAndAway(competitors []competitor) (home, away competitor, ok bool) {
	if len(competitors) < minCompetitorsPerEvent {
		return competitor{}, competitor{}, false
	}

	var foundHome, foundAway bool
	for _, item := range competitors {
		switch strings.ToLower(strings.TrimSpace(item.HomeAway)) {
		case competitorHome:
			if !foundHome {
				home, foundHome = item, true
			}
		case competitorAway:
			if !foundAway {
				away, foundAway = item, true
			}
		}
	}
	if foundHome && foundAway {
		return home, away, true
	}
	return competitors[1], competitors[0], true
}
