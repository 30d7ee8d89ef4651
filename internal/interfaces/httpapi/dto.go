package httpapi

import (
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

// localDisplayLayout renders times in the competition zone, e.g. "Thu 22 Oct 00:00".
const localDisplayLayout = "Mon 02 Jan 15:04"

type windowDTO struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	StartLocal    string    `json:"start_local"`
	EndLocal      string    `json:"end_local"`
	Timezone      string    `json:"timezone"`
	ISOYear       int       `json:"iso_year"`
	ISOWeek       int       `json:"iso_week"`
	DurationHours float64   `json:"duration_hours"`
}

func windowToDTO(w window.Window, loc *time.Location) windowDTO {
	if loc == nil {
		loc = time.UTC
	}
	year, week := w.ISOWeek(loc)
	return windowDTO{
		Start:         w.Start.UTC(),
		End:           w.End.UTC(),
		StartLocal:    w.Start.In(loc).Format(localDisplayLayout),
		EndLocal:      w.End.In(loc).Format(localDisplayLayout),
		Timezone:      loc.String(),
		ISOYear:       year,
		ISOWeek:       week,
		DurationHours: w.Duration().Hours(),
	}
}

type fixtureDTO struct {
	ID           string    `json:"id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	KickoffAt    time.Time `json:"kickoff_at"`
	KickoffLocal string    `json:"kickoff_local"`
	HomeSpread   *float64  `json:"home_spread"`
	AwaySpread   *float64  `json:"away_spread"`
	Matchkey     string    `json:"matchkey"`
	Canonical    bool      `json:"canonical"`
	Locked       bool      `json:"locked"`
}

func fixtureViewToDTO(view usecase.FixtureView, loc *time.Location) fixtureDTO {
	home, away := view.Fixture.Spreads()
	return fixtureDTO{
		ID:           view.Fixture.ID,
		HomeTeam:     view.Fixture.HomeTeam,
		AwayTeam:     view.Fixture.AwayTeam,
		KickoffAt:    view.Fixture.KickoffAt.UTC(),
		KickoffLocal: view.Fixture.KickoffAt.In(loc).Format(localDisplayLayout),
		HomeSpread:   home,
		AwaySpread:   away,
		Matchkey:     view.Matchkey,
		Canonical:    view.Canonical,
		Locked:       view.Locked,
	}
}

type fixturesResponse struct {
	Window   windowDTO    `json:"window"`
	Fixtures []fixtureDTO `json:"fixtures"`
}

type pickOptionDTO struct {
	Team      string    `json:"team"`
	Opponent  string    `json:"opponent"`
	FixtureID string    `json:"fixture_id"`
	Matchkey  string    `json:"matchkey"`
	KickoffAt time.Time `json:"kickoff_at"`
	Spread    *float64  `json:"spread"`
}

func pickOptionToDTO(option usecase.PickOption) pickOptionDTO {
	return pickOptionDTO{
		Team:      option.Team,
		Opponent:  option.Opponent,
		FixtureID: option.FixtureID,
		Matchkey:  option.Matchkey,
		KickoffAt: option.Fixture.KickoffAt.UTC(),
		Spread:    option.Spread,
	}
}

type myPickDTO struct {
	FixtureID   string    `json:"fixture_id"`
	Team        string    `json:"team"`
	Opponent    string    `json:"opponent"`
	Matchkey    string    `json:"matchkey"`
	KickoffAt   time.Time `json:"kickoff_at"`
	Locked      bool      `json:"locked"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

func confirmedPickToDTO(item usecase.ConfirmedPick) myPickDTO {
	return myPickDTO{
		FixtureID:   item.Pick.FixtureID,
		Team:        item.Pick.Team,
		Opponent:    item.Fixture.Opponent(item.Pick.Team),
		Matchkey:    item.Matchkey,
		KickoffAt:   item.Fixture.KickoffAt.UTC(),
		Locked:      item.Locked,
		ConfirmedAt: item.Pick.CreatedAt.UTC(),
	}
}

type submitPicksRequest struct {
	Selections []usecase.Selection `json:"selections" validate:"required,min=1,dive"`
}

type manualFixtureRecord struct {
	ID         string    `json:"id"`
	HomeTeam   string    `json:"home_team" validate:"required"`
	AwayTeam   string    `json:"away_team" validate:"required"`
	KickoffAt  time.Time `json:"kickoff_at" validate:"required"`
	HomeSpread *float64  `json:"home_spread"`
	AwaySpread *float64  `json:"away_spread"`
}

type manualFixturesRequest struct {
	Fixtures []manualFixtureRecord `json:"fixtures" validate:"required,min=1,dive"`
}

func (r manualFixturesRequest) toExternal() []usecase.ExternalFixture {
	out := make([]usecase.ExternalFixture, 0, len(r.Fixtures))
	for _, item := range r.Fixtures {
		out = append(out, usecase.ExternalFixture{
			ID:         item.ID,
			HomeTeam:   item.HomeTeam,
			AwayTeam:   item.AwayTeam,
			KickoffAt:  item.KickoffAt,
			HomeSpread: item.HomeSpread,
			AwaySpread: item.AwaySpread,
		})
	}
	return out
}

type importReportDTO struct {
	usecase.ImportReport
	Window windowDTO `json:"window"`
}

type ingestReportDTO struct {
	usecase.IngestReport
	Week string `json:"week"`
}

type resultsBoardDTO struct {
	usecase.ResultsBoard
	Week         string `json:"week,omitempty"`
	PreviousWeek string `json:"previous_week,omitempty"`
}

func resultsBoardToDTO(board usecase.ResultsBoard) resultsBoardDTO {
	if board.Rows == nil {
		board.Rows = []usecase.ResultsBoardRow{}
	}
	return resultsBoardDTO{
		ResultsBoard: board,
		Week:         weekLabel(board.Week),
		PreviousWeek: weekLabel(board.PreviousWeek),
	}
}

func weekLabel(w publishedweek.Week) string {
	if w.IsZero() {
		return ""
	}
	return w.String()
}
