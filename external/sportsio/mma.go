package sportsio

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/emiliogq/matchweek/internal/domain/match"
)

const mmaLeagueName = "UFC"

type mmaEnvelope struct {
	Response []mmaFight `json:"response"`
}

type mmaFight struct {
	Slug   string `json:"slug"`
	IsMain bool   `json:"is_main"`
	Date   string `json:"date"`
}

// MMAProvider pulls a season's fight list and reduces it to one match per
// numbered event: the event's main card doubles as the match, its first
// main-card fight's date as the start.
type MMAProvider struct {
	client  *Client
	seasons []int
	now     func() time.Time
}

func NewMMAProvider(client *Client, seasons []int, now func() time.Time) *MMAProvider {
	if now == nil {
		now = time.Now
	}
	return &MMAProvider{
		client:  client,
		seasons: seasons,
		now:     now,
	}
}

func (p *MMAProvider) Sport() match.Sport { return match.SportMMA }

func (p *MMAProvider) FetchAll(ctx context.Context) ([]match.Match, error) {
	now := p.now()
	matches := make([]match.Match, 0, 16)
	for _, season := range p.seasons {
		var envelope mmaEnvelope
		query := map[string]string{
			"season": strconv.Itoa(season),
		}
		if err := p.client.doJSON(ctx, "/fights", query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch mma fights season=%d: %w", season, err)
		}

		for _, event := range eventDates(envelope.Response) {
			home, away, ok := splitEventSlug(event.slug)
			if !ok {
				continue
			}
			m, err := match.NewFromWire(match.Params{
				Sport:  string(match.SportMMA),
				League: mmaLeagueName,
				Home:   home,
				Away:   away,
			}, event.date, now)
			if err != nil {
				return nil, fmt.Errorf("map mma event %q: %w", event.slug, err)
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}

type mmaEvent struct {
	slug string
	date string
}

// eventDates keeps the first main-card fight of every numbered event, in
// payload order.
func eventDates(fights []mmaFight) []mmaEvent {
	seen := make(map[string]struct{}, len(fights))
	events := make([]mmaEvent, 0, len(fights))
	for _, fight := range fights {
		if !fight.IsMain || !isEventNumbered(fight.Slug) {
			continue
		}
		if _, ok := seen[fight.Slug]; ok {
			continue
		}
		seen[fight.Slug] = struct{}{}
		events = append(events, mmaEvent{slug: fight.Slug, date: fight.Date})
	}
	return events
}

// isEventNumbered matches slugs like "UFC 311: Makhachev vs. Moicano":
// the promotion token must be ufc and the event token a number, allowing
// one trailing punctuation rune.
func isEventNumbered(slug string) bool {
	fields := strings.Fields(slug)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "ufc") {
		return false
	}
	event := []rune(fields[1])
	if last := len(event) - 1; last >= 0 && !unicode.IsDigit(event[last]) {
		event = event[:last]
	}
	if len(event) == 0 {
		return false
	}
	for _, r := range event {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// splitEventSlug extracts the headliners from "<event>: <home> vs. <away>".
// Events missing either separator carry no usable fight card and are
// dropped.
func splitEventSlug(slug string) (home, away string, ok bool) {
	colon := strings.Index(slug, ":")
	vs := strings.Index(slug, "vs.")
	if colon == -1 || vs == -1 || vs <= colon {
		return "", "", false
	}
	home = strings.TrimSpace(slug[colon+1 : vs])
	away = strings.TrimSpace(slug[vs+3:])
	return home, away, true
}
