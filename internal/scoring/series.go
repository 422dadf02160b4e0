package scoring

import (
	"sort"

	"github.com/abrezinsky/castawayleague/internal/models"
)

// TeamInputs is everything needed to compute a team's ledger rows
type TeamInputs struct {
	TeamID  int
	Roster  *Resolver
	Answers []models.ScoredAnswer
	// Retention maps episode number to points per active castaway.
	// Episodes missing from the map score zero retention points.
	Retention map[int]int
}

// ClampedWager records a wager that fell outside its question's bounds
type ClampedWager struct {
	AnswerID   int
	QuestionID int
	Submitted  int
	Applied    int
}

// EpisodeResult is one computed ledger row plus what it was built from
type EpisodeResult struct {
	Row                 models.TeamEpisodePoints
	ActiveCastaways     int
	RetentionConfigured bool
	AnswerPoints        []models.AnswerPoints
	Clamped             []ClampedWager
}

// SeriesResult is a contiguous run of ledger rows for one team
type SeriesResult struct {
	Rows                 []models.TeamEpisodePoints
	AnswerPoints         []models.AnswerPoints
	Clamped              []ClampedWager
	UnconfiguredEpisodes []int
}

// FinalTotal is the running total of the last row, or start when empty
func (s SeriesResult) FinalTotal(start int) int {
	if len(s.Rows) == 0 {
		return start
	}
	return s.Rows[len(s.Rows)-1].RunningTotal
}

// ComputeEpisode folds one episode on top of previousRunningTotal.
// Answers to unscored questions and to other episodes are skipped.
func ComputeEpisode(in TeamInputs, episode, previousRunningTotal int) EpisodeResult {
	return computeEpisode(in, episode, previousRunningTotal, in.Answers)
}

// ComputeSeries computes episodes from..to in ascending order, starting
// from the running total held before episode from. An empty range
// (to < from) yields no rows.
func ComputeSeries(in TeamInputs, from, to, startingTotal int) SeriesResult {
	byEpisode := make(map[int][]models.ScoredAnswer)
	for _, sa := range in.Answers {
		byEpisode[sa.Question.EpisodeNumber] = append(byEpisode[sa.Question.EpisodeNumber], sa)
	}

	var out SeriesResult
	running := startingTotal
	for ep := from; ep <= to; ep++ {
		res := computeEpisode(in, ep, running, byEpisode[ep])
		out.Rows = append(out.Rows, res.Row)
		out.AnswerPoints = append(out.AnswerPoints, res.AnswerPoints...)
		out.Clamped = append(out.Clamped, res.Clamped...)
		if !res.RetentionConfigured {
			out.UnconfiguredEpisodes = append(out.UnconfiguredEpisodes, ep)
		}
		running = res.Row.RunningTotal
	}
	return out
}

func computeEpisode(in TeamInputs, episode, previousRunningTotal int, answers []models.ScoredAnswer) EpisodeResult {
	res := EpisodeResult{}

	// Sorted so persisted answer updates happen in a stable order.
	sorted := make([]models.ScoredAnswer, 0, len(answers))
	for _, sa := range answers {
		if sa.Question.EpisodeNumber != episode || !sa.Question.IsScored {
			continue
		}
		if sa.Answer.TeamID != in.TeamID {
			continue
		}
		sorted = append(sorted, sa)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Answer.ID < sorted[j].Answer.ID })

	questionPoints := 0
	for _, sa := range sorted {
		scored, err := ScoreAnswer(sa.Question, sa.Answer)
		if err != nil {
			continue
		}
		questionPoints += scored.Points
		res.AnswerPoints = append(res.AnswerPoints, models.AnswerPoints{
			AnswerID:     sa.Answer.ID,
			PointsEarned: scored.Points,
		})
		if scored.Clamped {
			res.Clamped = append(res.Clamped, ClampedWager{
				AnswerID:   sa.Answer.ID,
				QuestionID: sa.Question.ID,
				Submitted:  *sa.Answer.WagerAmount,
				Applied:    scored.Wager,
			})
		}
	}

	perCastaway, configured := in.Retention[episode]
	res.RetentionConfigured = configured
	if in.Roster != nil {
		res.ActiveCastaways = in.Roster.ActiveCount(episode)
	}
	retentionPoints := res.ActiveCastaways * perCastaway

	total := questionPoints + retentionPoints
	res.Row = models.TeamEpisodePoints{
		TeamID:             in.TeamID,
		EpisodeNumber:      episode,
		QuestionPoints:     questionPoints,
		RetentionPoints:    retentionPoints,
		TotalEpisodePoints: total,
		RunningTotal:       previousRunningTotal + total,
	}
	return res
}
