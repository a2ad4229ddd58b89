package domain

import (
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
)

// Summary is the aggregate of one child-month's reservations.
type Summary struct {
	SpotCount int64
	// Options has an entry for every known option type, zero included.
	Options map[reservationdomain.OptionType]int64
}

// Summarize folds a month's reservations into option totals and a spot-day
// count. Pure; the caller persists the result. Meal flags add one per day
// they appear, transport options add their explicit count (one when the
// count is unset).
func Summarize(reservations []reservationdomain.Reservation) Summary {
	options := make(map[reservationdomain.OptionType]int64, 5)
	for _, t := range reservationdomain.KnownOptionTypes() {
		options[t] = 0
	}

	var spotCount int64
	for i := range reservations {
		if reservations[i].Kind == reservationdomain.KindSpot {
			spotCount++
		}
		for _, opt := range reservations[i].Options {
			if !opt.OptionType.Known() {
				continue
			}
			options[opt.OptionType] += contribution(opt)
		}
	}

	return Summary{SpotCount: spotCount, Options: options}
}

func contribution(opt reservationdomain.Option) int64 {
	if !opt.OptionType.Counted() {
		return 1
	}
	if opt.Count <= 0 {
		return 1
	}
	return opt.Count
}

// Total sums all option counts in the summary.
func (s Summary) Total() int64 {
	var total int64
	for _, c := range s.Options {
		total += c
	}
	return total
}
