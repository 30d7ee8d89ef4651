package memory

import (
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
)

func spread(v float64) *float64 {
	return &v
}

// SeedFixtures returns a sample slate inside w for local runs without a
// provider key.
func SeedFixtures(w window.Window) []fixture.Fixture {
	thursday := w.Start
	sunday := w.Start.AddDate(0, 0, 3)
	monday := w.Start.AddDate(0, 0, 4)

	return []fixture.Fixture{
		{
			ID:         "seed-thu-1",
			HomeTeam:   "Green Bay Packers",
			AwayTeam:   "Chicago Bears",
			KickoffAt:  thursday.Add(20*time.Hour + 15*time.Minute),
			HomeSpread: spread(-6.5),
			AwaySpread: spread(6.5),
		},
		{
			ID:         "seed-sun-1",
			HomeTeam:   "Kansas City Chiefs",
			AwayTeam:   "Buffalo Bills",
			KickoffAt:  sunday.Add(17 * time.Hour),
			HomeSpread: spread(-3.5),
		},
		{
			ID:         "seed-sun-2",
			HomeTeam:   "Philadelphia Eagles",
			AwayTeam:   "Dallas Cowboys",
			KickoffAt:  sunday.Add(17 * time.Hour),
			HomeSpread: spread(-2.5),
			AwaySpread: spread(2.5),
		},
		{
			ID:         "seed-sun-3",
			HomeTeam:   "San Francisco 49ers",
			AwayTeam:   "Seattle Seahawks",
			KickoffAt:  sunday.Add(20*time.Hour + 25*time.Minute),
			AwaySpread: spread(4),
		},
		{
			ID:         "seed-sun-4",
			HomeTeam:   "New York Jets",
			AwayTeam:   "New England Patriots",
			KickoffAt:  sunday.Add(17 * time.Hour),
			HomeSpread: spread(1),
			AwaySpread: spread(-1),
		},
		{
			ID:         "seed-sun-5",
			HomeTeam:   "Baltimore Ravens",
			AwayTeam:   "Pittsburgh Steelers",
			KickoffAt:  sunday.Add(24*time.Hour + 20*time.Minute),
			HomeSpread: spread(-4.5),
			AwaySpread: spread(4.5),
		},
		{
			ID:         "seed-mon-1",
			HomeTeam:   "Detroit Lions",
			AwayTeam:   "Minnesota Vikings",
			KickoffAt:  monday.Add(20*time.Hour + 15*time.Minute),
			HomeSpread: spread(-3),
			AwaySpread: spread(3),
		},
	}
}
