// Package cf implements a latent-factor collaborative-filtering model
// fitted with stochastic gradient descent, in the style of classic
// biased matrix factorization (Funk SVD).
package cf

import (
	"math"
	"math/rand"
)

// Rating is one aggregated (user, item) interaction score.
type Rating struct {
	UserID string
	ItemID string
	Score  float64
}

// Params controls the factorization.
type Params struct {
	Factors        int
	Epochs         int
	LearningRate   float64
	Regularization float64
	MinRating      float64
	MaxRating      float64
	InitStdDev     float64
	RandSeed       int64
}

// DefaultParams returns the training defaults used in production.
func DefaultParams() Params {
	return Params{
		Factors:        100,
		Epochs:         20,
		LearningRate:   0.005,
		Regularization: 0.02,
		MinRating:      1,
		MaxRating:      10,
		InitStdDev:     0.1,
		RandSeed:       1,
	}
}

// Model is a fitted latent-factor model. All fields are exported for gob
// serialization. A loaded model is immutable: Predict never mutates state,
// so a single instance is safe for concurrent readers.
type Model struct {
	Params      Params
	GlobalMean  float64
	UserIndex   map[string]int
	ItemIndex   map[string]int
	UserBias    []float64
	ItemBias    []float64
	UserFactors [][]float64
	ItemFactors [][]float64
}

// Fit trains a model on sparse (user, item, score) triples. Scores are
// clamped to [MinRating, MaxRating] before fitting. Training is
// deterministic for a fixed RandSeed and input order.
func Fit(ratings []Rating, p Params) *Model {
	m := &Model{
		Params:    p,
		UserIndex: make(map[string]int),
		ItemIndex: make(map[string]int),
	}

	if len(ratings) == 0 {
		return m
	}

	clamped := make([]Rating, len(ratings))
	var sum float64
	for i, r := range ratings {
		r.Score = clamp(r.Score, p.MinRating, p.MaxRating)
		clamped[i] = r
		sum += r.Score

		if _, ok := m.UserIndex[r.UserID]; !ok {
			m.UserIndex[r.UserID] = len(m.UserIndex)
		}
		if _, ok := m.ItemIndex[r.ItemID]; !ok {
			m.ItemIndex[r.ItemID] = len(m.ItemIndex)
		}
	}
	m.GlobalMean = sum / float64(len(clamped))

	rng := rand.New(rand.NewSource(p.RandSeed))
	m.UserBias = make([]float64, len(m.UserIndex))
	m.ItemBias = make([]float64, len(m.ItemIndex))
	m.UserFactors = randomFactors(rng, len(m.UserIndex), p.Factors, p.InitStdDev)
	m.ItemFactors = randomFactors(rng, len(m.ItemIndex), p.Factors, p.InitStdDev)

	order := rng.Perm(len(clamped))
	for epoch := 0; epoch < p.Epochs; epoch++ {
		for _, idx := range order {
			r := clamped[idx]
			u := m.UserIndex[r.UserID]
			i := m.ItemIndex[r.ItemID]

			pu := m.UserFactors[u]
			qi := m.ItemFactors[i]

			pred := m.GlobalMean + m.UserBias[u] + m.ItemBias[i] + dot(pu, qi)
			err := r.Score - pred

			m.UserBias[u] += p.LearningRate * (err - p.Regularization*m.UserBias[u])
			m.ItemBias[i] += p.LearningRate * (err - p.Regularization*m.ItemBias[i])

			for f := 0; f < p.Factors; f++ {
				puf := pu[f]
				qif := qi[f]
				pu[f] += p.LearningRate * (err*qif - p.Regularization*puf)
				qi[f] += p.LearningRate * (err*puf - p.Regularization*qif)
			}
		}
	}

	return m
}

// Predict estimates the affinity of a user for an item, clamped to the
// rating scale. Unknown users or items contribute no bias or factor
// terms, so a fully cold pair falls back to the global mean.
func (m *Model) Predict(userID, itemID string) float64 {
	est := m.GlobalMean

	u, knownUser := m.UserIndex[userID]
	i, knownItem := m.ItemIndex[itemID]

	if knownUser {
		est += m.UserBias[u]
	}
	if knownItem {
		est += m.ItemBias[i]
	}
	if knownUser && knownItem {
		est += dot(m.UserFactors[u], m.ItemFactors[i])
	}

	return clamp(est, m.Params.MinRating, m.Params.MaxRating)
}

// Users returns the number of distinct users seen during fitting.
func (m *Model) Users() int { return len(m.UserIndex) }

// Items returns the number of distinct items seen during fitting.
func (m *Model) Items() int { return len(m.ItemIndex) }

func randomFactors(rng *rand.Rand, n, factors int, stddev float64) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, factors)
		for f := range row {
			row[f] = rng.NormFloat64() * stddev
		}
		out[i] = row
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
