package pipeline

// PredictorKind names the branch-resolution policy a Config selects.
type PredictorKind uint8

const (
	PredictorStaticNotTaken PredictorKind = iota
	PredictorStaticTaken
	PredictorDynamic1Bit
	PredictorDynamic2Bit
)

// BranchPredictorStats tallies prediction outcomes, exposed through the
// state snapshot (spec.md §6, §9 Design Notes on reporting).
type BranchPredictorStats struct {
	Predictions    uint64
	Correct        uint64
	Mispredictions uint64
}

// Accuracy returns the fraction of predictions that matched the actual
// outcome, as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// MispredictionRate returns the fraction of predictions that did not
// match the actual outcome, as a percentage.
func (s BranchPredictorStats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// Predictor is the uniform contract every branch-resolution variant
// implements: predict a direction for pc, then learn the actual outcome.
type Predictor interface {
	Predict(pc uint64) bool
	Update(pc uint64, predicted, actual bool)
	Stats() BranchPredictorStats
	Reset()
}

// NewPredictor builds the predictor variant named by kind.
func NewPredictor(kind PredictorKind) Predictor {
	switch kind {
	case PredictorStaticTaken:
		return &staticPredictor{taken: true}
	case PredictorDynamic1Bit:
		return newDynamicPredictor(1)
	case PredictorDynamic2Bit:
		return newDynamicPredictor(2)
	default:
		return &staticPredictor{taken: false}
	}
}

// staticPredictor always predicts the same direction regardless of PC.
type staticPredictor struct {
	taken bool
	stats BranchPredictorStats
}

func (p *staticPredictor) Predict(pc uint64) bool { return p.taken }

func (p *staticPredictor) Update(pc uint64, predicted, actual bool) {
	p.stats.Predictions++
	if predicted == actual {
		p.stats.Correct++
	} else {
		p.stats.Mispredictions++
	}
}

func (p *staticPredictor) Stats() BranchPredictorStats { return p.stats }

func (p *staticPredictor) Reset() { p.stats = BranchPredictorStats{} }

// dynamicPredictor is a PC-indexed table of saturating counters: 1 bit
// (last-outcome) or 2 bits (strong/weak not-taken/taken), selected by
// counterBits.
type dynamicPredictor struct {
	counters    map[uint64]uint8
	counterBits uint8
	maxCounter  uint8
	stats       BranchPredictorStats
}

func newDynamicPredictor(counterBits uint8) *dynamicPredictor {
	return &dynamicPredictor{
		counters:    make(map[uint64]uint8),
		counterBits: counterBits,
		maxCounter:  uint8(1<<counterBits) - 1,
	}
}

func (p *dynamicPredictor) initial() uint8 {
	// 2-bit counters default to weakly-taken (state 2 of 0..3), mirroring
	// the bimodal table's usual bias. The 1-bit counter has no such
	// bias: an unseen PC defaults to not-taken.
	if p.counterBits == 2 {
		return 2
	}
	return 0
}

func (p *dynamicPredictor) Predict(pc uint64) bool {
	counter, ok := p.counters[pc]
	if !ok {
		counter = p.initial()
	}
	threshold := (p.maxCounter + 1) / 2
	return counter >= threshold
}

func (p *dynamicPredictor) Update(pc uint64, predicted, actual bool) {
	p.stats.Predictions++
	if predicted == actual {
		p.stats.Correct++
	} else {
		p.stats.Mispredictions++
	}

	counter, ok := p.counters[pc]
	if !ok {
		counter = p.initial()
	}
	if actual {
		if counter < p.maxCounter {
			counter++
		}
	} else {
		if counter > 0 {
			counter--
		}
	}
	p.counters[pc] = counter
}

func (p *dynamicPredictor) Stats() BranchPredictorStats { return p.stats }

func (p *dynamicPredictor) Reset() {
	p.counters = make(map[uint64]uint8)
	p.stats = BranchPredictorStats{}
}
