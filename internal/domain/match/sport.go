package match

import (
	"fmt"
	"strings"
)

// Sport keys the provider configuration and the adapter selector.
type Sport string

const (
	SportFootball   Sport = "football"
	SportBasketball Sport = "nba"
	SportMMA        Sport = "mma"
)

func ParseSport(value string) (Sport, error) {
	switch Sport(strings.ToLower(strings.TrimSpace(value))) {
	case SportFootball:
		return SportFootball, nil
	case SportBasketball:
		return SportBasketball, nil
	case SportMMA:
		return SportMMA, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSport, value)
	}
}

func AllSports() []Sport {
	return []Sport{SportFootball, SportBasketball, SportMMA}
}
