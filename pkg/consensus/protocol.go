package consensus

// Quorum thresholds. Comparisons are strictly greater-than: exactly
// half is not a majority, and exactly two thirds is not a super
// majority.
const (
	MajorityThreshold      = 0.5
	SuperMajorityThreshold = 2.0 / 3.0
)

// Protocol turns a list of votes into an Outcome. Evaluate is a pure
// function of its input: an empty vote list yields a no-consensus
// outcome with empty tallies.
type Protocol interface {
	Strategy() string
	Evaluate(votes []Vote) Outcome
	MeetsThreshold(votes []Vote, threshold float64) bool
}

// MeetsThreshold reports whether the most voted option's raw share
// strictly exceeds threshold.
func MeetsThreshold(votes []Vote, threshold float64) bool {
	if len(votes) == 0 {
		return false
	}
	counts := make(map[string]int)
	max := 0
	for _, v := range votes {
		counts[v.Option]++
		if counts[v.Option] > max {
			max = counts[v.Option]
		}
	}
	return float64(max)/float64(len(votes)) > threshold
}

// quorum is embedded by every protocol to share the raw-count
// threshold check.
type quorum struct{}

func (quorum) MeetsThreshold(votes []Vote, threshold float64) bool {
	return MeetsThreshold(votes, threshold)
}

// tallied is the shared bookkeeping every protocol starts from.
type tallied struct {
	counts  map[string]int
	sums    map[string]float64
	order   []string // options in first-vote order, for deterministic ties
	total   int
	sumConf float64
}

func tally(votes []Vote) tallied {
	t := tallied{
		counts: make(map[string]int, len(votes)),
		sums:   make(map[string]float64, len(votes)),
		total:  len(votes),
	}
	for _, v := range votes {
		if _, seen := t.counts[v.Option]; !seen {
			t.order = append(t.order, v.Option)
		}
		t.counts[v.Option]++
		t.sums[v.Option] += v.Confidence
		t.sumConf += v.Confidence
	}
	return t
}

// topByCount returns the option with the most raw votes, ties broken
// by first-encountered.
func (t tallied) topByCount() (string, int) {
	best, bestCount := "", 0
	for _, opt := range t.order {
		if t.counts[opt] > bestCount {
			best, bestCount = opt, t.counts[opt]
		}
	}
	return best, bestCount
}

// topBySum returns the option with the highest summed confidence,
// ties broken by first-encountered.
func (t tallied) topBySum() (string, float64) {
	best, bestSum := "", -1.0
	for _, opt := range t.order {
		if t.sums[opt] > bestSum {
			best, bestSum = opt, t.sums[opt]
		}
	}
	if best == "" {
		return "", 0
	}
	return best, t.sums[best]
}

// meanConfidence is the average confidence among votes for option.
func (t tallied) meanConfidence(option string) float64 {
	if t.counts[option] == 0 {
		return 0
	}
	return t.sums[option] / float64(t.counts[option])
}

// outcome assembles an Outcome carrying this tally.
func (t tallied) outcome(strategy, winner string, confidence float64, reached bool) Outcome {
	return Outcome{
		Strategy:       strategy,
		WinningOption:  winner,
		Confidence:     confidence,
		Reached:        reached,
		VoteCounts:     t.counts,
		ConfidenceSums: t.sums,
		TotalVotes:     t.total,
	}
}
