package domain

// Aggregator defines the interface for combining the beliefs of a group of
// agents into a single group verdict under a shared threshold.
// Implementations differ in where the decision rule is applied: to each
// agent before combining, or to the combined beliefs.
type Aggregator interface {
	// Name identifies the aggregation method in outcomes and reports.
	Name() string

	// Aggregate returns the group verdict for the belief matrix together
	// with the intermediate values it was decided on.
	// Implementations must not retain or modify the matrix.
	//
	// Example:
	//
	//	m, _ := BeliefMatrixFromRows([][]float64{{0.9}, {0.1}})
	//	agg, err := PreferenceAggregation{}.Aggregate(m, 0.5)
	//	// agg.Verdict == false, agg.IndividualVerdicts == [true false]
	Aggregate(beliefs BeliefMatrix, threshold float64) (Aggregation, error)
}

// Aggregation is the result of one aggregation method.
type Aggregation struct {
	// Verdict is the group verdict.
	Verdict bool

	// IndividualVerdicts holds each agent's verdict in row order. Only
	// methods that decide per agent set it.
	IndividualVerdicts []bool

	// GroupBeliefs holds the combined belief per criterion. Only methods
	// that combine beliefs before deciding set it.
	GroupBeliefs []float64
}

var (
	_ Aggregator = PreferenceAggregation{}
	_ Aggregator = BeliefAggregation{}
)

// PreferenceAggregation decides by unanimity: every agent applies the
// decision rule to its own beliefs and the group accepts only if all of
// them accept.
type PreferenceAggregation struct{}

// Name returns "preference".
func (PreferenceAggregation) Name() string { return "preference" }

// Aggregate implements Aggregator. A matrix with no agents is accepted
// vacuously.
func (PreferenceAggregation) Aggregate(beliefs BeliefMatrix, threshold float64) (Aggregation, error) {
	verdicts := make([]bool, beliefs.Rows())
	for i := range verdicts {
		verdicts[i] = Decide(beliefs.Row(i), threshold)
	}
	return Aggregation{Verdict: Unanimous(verdicts), IndividualVerdicts: verdicts}, nil
}

// BeliefAggregation decides on the group belief vector: beliefs are
// averaged per criterion with equal weight and the decision rule is applied
// once to the averages.
type BeliefAggregation struct{}

// Name returns "belief".
func (BeliefAggregation) Name() string { return "belief" }

// Aggregate implements Aggregator. A matrix with no agents yields
// ErrUndefinedResult.
func (BeliefAggregation) Aggregate(beliefs BeliefMatrix, threshold float64) (Aggregation, error) {
	means, err := beliefs.ColumnMeans()
	if err != nil {
		return Aggregation{}, err
	}
	return Aggregation{Verdict: Decide(means, threshold), GroupBeliefs: means}, nil
}
