package scoring

import (
	"sort"

	"github.com/abrezinsky/castawayleague/internal/models"
)

// Overlap records two roster windows for the same castaway that share
// at least one episode. The resolver still counts the castaway once.
type Overlap struct {
	CastawayID    int
	FirstEntryID  int
	SecondEntryID int
	FromEpisode   int
	ToEpisode     *int // nil when both windows are open-ended
}

// Resolver answers roster-window questions for a single team
type Resolver struct {
	teamID   int
	windows  map[int][]models.RosterEntry // castaway -> windows ordered by start
	overlaps []Overlap
}

// NewResolver indexes a team's roster entries. Entries belonging to other
// teams are ignored.
func NewResolver(teamID int, entries []models.RosterEntry) *Resolver {
	r := &Resolver{
		teamID:  teamID,
		windows: make(map[int][]models.RosterEntry),
	}
	for _, e := range entries {
		if e.TeamID != teamID {
			continue
		}
		r.windows[e.CastawayID] = append(r.windows[e.CastawayID], e)
	}

	castaways := make([]int, 0, len(r.windows))
	for id := range r.windows {
		castaways = append(castaways, id)
	}
	sort.Ints(castaways)

	for _, id := range castaways {
		ws := r.windows[id]
		sort.Slice(ws, func(i, j int) bool {
			if ws[i].StartEpisode != ws[j].StartEpisode {
				return ws[i].StartEpisode < ws[j].StartEpisode
			}
			return ws[i].ID < ws[j].ID
		})
		for i := 0; i < len(ws); i++ {
			for j := i + 1; j < len(ws); j++ {
				if ov, ok := overlap(ws[i], ws[j]); ok {
					r.overlaps = append(r.overlaps, ov)
				}
			}
		}
	}
	return r
}

// TeamID returns the team the resolver was built for
func (r *Resolver) TeamID() int {
	return r.teamID
}

// IsActive reports whether the castaway was on the active roster during episode
func (r *Resolver) IsActive(castawayID, episode int) bool {
	for _, w := range r.windows[castawayID] {
		if covers(w, episode) {
			return true
		}
	}
	return false
}

// ActiveCastaways returns the distinct castaways active during episode, ascending
func (r *Resolver) ActiveCastaways(episode int) []int {
	var ids []int
	for id := range r.windows {
		if r.IsActive(id, episode) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// ActiveCount is the number of distinct castaways active during episode
func (r *Resolver) ActiveCount(episode int) int {
	count := 0
	for id := range r.windows {
		if r.IsActive(id, episode) {
			count++
		}
	}
	return count
}

// Overlaps lists every pair of windows that double-cover a castaway
func (r *Resolver) Overlaps() []Overlap {
	return r.overlaps
}

func covers(e models.RosterEntry, episode int) bool {
	if episode < e.StartEpisode {
		return false
	}
	return e.EndEpisode == nil || *e.EndEpisode >= episode
}

// overlap expects a.StartEpisode <= b.StartEpisode
func overlap(a, b models.RosterEntry) (Overlap, bool) {
	if a.EndEpisode != nil && *a.EndEpisode < b.StartEpisode {
		return Overlap{}, false
	}
	ov := Overlap{
		CastawayID:    a.CastawayID,
		FirstEntryID:  a.ID,
		SecondEntryID: b.ID,
		FromEpisode:   b.StartEpisode,
	}
	switch {
	case a.EndEpisode == nil && b.EndEpisode == nil:
	case a.EndEpisode == nil:
		end := *b.EndEpisode
		ov.ToEpisode = &end
	case b.EndEpisode == nil:
		end := *a.EndEpisode
		ov.ToEpisode = &end
	default:
		end := min(*a.EndEpisode, *b.EndEpisode)
		ov.ToEpisode = &end
	}
	return ov, true
}
