package sportsio

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/emiliogq/matchweek/internal/domain/match"
)

const basketballLeagueName = "NBA"

type basketballEnvelope struct {
	Response []basketballGame `json:"response"`
}

// The basketball endpoint names the away side "visitors" and nests the tipoff
// under date.start.
type basketballGame struct {
	Date struct {
		Start string `json:"start"`
	} `json:"date"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Visitors struct {
			Name string `json:"name"`
		} `json:"visitors"`
	} `json:"teams"`
}

type BasketballProvider struct {
	client *Client
	teams  []TeamDescriptor
	now    func() time.Time
}

func NewBasketballProvider(client *Client, teams []TeamDescriptor, now func() time.Time) *BasketballProvider {
	if now == nil {
		now = time.Now
	}
	return &BasketballProvider{
		client: client,
		teams:  teams,
		now:    now,
	}
}

func (p *BasketballProvider) Sport() match.Sport { return match.SportBasketball }

func (p *BasketballProvider) FetchAll(ctx context.Context) ([]match.Match, error) {
	now := p.now()
	matches := make([]match.Match, 0, len(p.teams)*8)
	for _, team := range p.teams {
		var envelope basketballEnvelope
		query := map[string]string{
			"team":   strconv.Itoa(team.TeamID),
			"league": strconv.Itoa(team.LeagueID),
			"season": strconv.Itoa(team.Season),
		}
		if err := p.client.doJSON(ctx, "/games", query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch basketball games team=%d: %w", team.TeamID, err)
		}

		for _, game := range envelope.Response {
			m, err := match.NewFromWire(match.Params{
				Sport:  string(match.SportBasketball),
				League: basketballLeagueName,
				Home:   game.Teams.Home.Name,
				Away:   game.Teams.Visitors.Name,
			}, game.Date.Start, now)
			if err != nil {
				return nil, fmt.Errorf("map basketball game %s vs %s: %w", game.Teams.Home.Name, game.Teams.Visitors.Name, err)
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}
