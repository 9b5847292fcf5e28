package footballdata

import (
	"sort"

	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
)

// Map iteration order is random; sort so repeated mapping yields identical output.
func sortStatistics(stats []matches.Statistic) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].TeamID != stats[j].TeamID {
			return stats[i].TeamID < stats[j].TeamID
		}
		return stats[i].Type < stats[j].Type
	})
}

func sortEvents(events []matches.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Minute < events[j].Minute
	})
}
