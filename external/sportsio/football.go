package sportsio

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/emiliogq/matchweek/internal/domain/match"
)

const footballLeagueName = "La Liga"

type footballEnvelope struct {
	Response []footballFixture `json:"response"`
}

type footballFixture struct {
	Fixture struct {
		Date string `json:"date"`
	} `json:"fixture"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
}

// FootballProvider pulls the fixture list of each configured team from the
// api-football endpoint.
type FootballProvider struct {
	client *Client
	teams  []TeamDescriptor
	now    func() time.Time
}

func NewFootballProvider(client *Client, teams []TeamDescriptor, now func() time.Time) *FootballProvider {
	if now == nil {
		now = time.Now
	}
	return &FootballProvider{
		client: client,
		teams:  teams,
		now:    now,
	}
}

func (p *FootballProvider) Sport() match.Sport { return match.SportFootball }

func (p *FootballProvider) FetchAll(ctx context.Context) ([]match.Match, error) {
	now := p.now()
	matches := make([]match.Match, 0, len(p.teams)*8)
	for _, team := range p.teams {
		var envelope footballEnvelope
		query := map[string]string{
			"team":   strconv.Itoa(team.TeamID),
			"league": strconv.Itoa(team.LeagueID),
			"season": strconv.Itoa(team.Season),
		}
		if err := p.client.doJSON(ctx, "/fixtures", query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch football fixtures team=%d: %w", team.TeamID, err)
		}

		for _, fixture := range envelope.Response {
			m, err := match.NewFromWire(match.Params{
				Sport:  string(match.SportFootball),
				League: footballLeagueName,
				Home:   fixture.Teams.Home.Name,
				Away:   fixture.Teams.Away.Name,
			}, fixture.Fixture.Date, now)
			if err != nil {
				return nil, fmt.Errorf("map football fixture %s vs %s: %w", fixture.Teams.Home.Name, fixture.Teams.Away.Name, err)
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}
