package consensus

// Majority declares the most voted option the winner when it holds a
// strict majority of raw votes.
type Majority struct {
	quorum
	threshold float64
	name      string
}

// NewMajority creates the simple majority protocol (> 0.5).
func NewMajority() *Majority {
	return &Majority{threshold: MajorityThreshold, name: "majority"}
}

// NewSuperMajority creates the two-thirds protocol (> 2/3).
func NewSuperMajority() *Majority {
	return &Majority{threshold: SuperMajorityThreshold, name: "super-majority"}
}

func (p *Majority) Strategy() string { return p.name }

func (p *Majority) Evaluate(votes []Vote) Outcome {
	t := tally(votes)
	if t.total == 0 {
		return t.outcome(p.name, "", 0, false)
	}
	winner, count := t.topByCount()
	reached := float64(count)/float64(t.total) > p.threshold
	return t.outcome(p.name, winner, t.meanConfidence(winner), reached)
}

// Unanimous requires every vote to name the same option.
type Unanimous struct {
	quorum
}

// NewUnanimous creates the unanimity protocol.
func NewUnanimous() *Unanimous { return &Unanimous{} }

func (*Unanimous) Strategy() string { return "unanimous" }

func (p *Unanimous) Evaluate(votes []Vote) Outcome {
	t := tally(votes)
	if t.total == 0 || len(t.order) != 1 {
		return t.outcome(p.Strategy(), "", 0, false)
	}
	winner := t.order[0]
	return t.outcome(p.Strategy(), winner, t.meanConfidence(winner), true)
}

// WeightedByConfidence weighs votes by how sure their agents are: an
// option wins when its share of the total confidence mass strictly
// exceeds the threshold.
type WeightedByConfidence struct {
	quorum
	threshold float64
}

// NewWeightedByConfidence creates the confidence-weighted protocol
// with the majority threshold.
func NewWeightedByConfidence() *WeightedByConfidence {
	return &WeightedByConfidence{threshold: MajorityThreshold}
}

// NewWeightedByConfidenceWithThreshold overrides the share an option
// must exceed.
func NewWeightedByConfidenceWithThreshold(threshold float64) *WeightedByConfidence {
	return &WeightedByConfidence{threshold: threshold}
}

func (*WeightedByConfidence) Strategy() string { return "weighted-by-confidence" }

func (p *WeightedByConfidence) Evaluate(votes []Vote) Outcome {
	t := tally(votes)
	if t.total == 0 || t.sumConf <= 0 {
		return t.outcome(p.Strategy(), "", 0, false)
	}
	winner, sum := t.topBySum()
	ratio := sum / t.sumConf
	return t.outcome(p.Strategy(), winner, ratio, ratio > p.threshold)
}

// HighestConfidence lets the single most confident vote decide. Ties
// go to the first-encountered vote, and any non-empty vote list
// reaches consensus.
type HighestConfidence struct {
	quorum
}

// NewHighestConfidence creates the single-best-vote protocol.
func NewHighestConfidence() *HighestConfidence { return &HighestConfidence{} }

func (*HighestConfidence) Strategy() string { return "highest-confidence" }

func (p *HighestConfidence) Evaluate(votes []Vote) Outcome {
	t := tally(votes)
	if t.total == 0 {
		return t.outcome(p.Strategy(), "", 0, false)
	}
	best := votes[0]
	for _, v := range votes[1:] {
		if v.Confidence > best.Confidence {
			best = v
		}
	}
	return t.outcome(p.Strategy(), best.Option, best.Confidence, true)
}

// RankedChoice short-circuits on a strict raw majority; otherwise the
// option with the highest summed confidence wins. This is a
// single-round approximation: no elimination rounds are run.
type RankedChoice struct {
	quorum
}

// NewRankedChoice creates the simplified ranked-choice protocol.
func NewRankedChoice() *RankedChoice { return &RankedChoice{} }

func (*RankedChoice) Strategy() string { return "ranked-choice" }

func (p *RankedChoice) Evaluate(votes []Vote) Outcome {
	t := tally(votes)
	if t.total == 0 {
		return t.outcome(p.Strategy(), "", 0, false)
	}

	if winner, count := t.topByCount(); float64(count)/float64(t.total) > MajorityThreshold {
		return t.outcome(p.Strategy(), winner, t.meanConfidence(winner), true)
	}

	winner, sum := t.topBySum()
	confidence := 0.0
	if t.sumConf > 0 {
		confidence = sum / t.sumConf
	}
	return t.outcome(p.Strategy(), winner, confidence, true)
}
