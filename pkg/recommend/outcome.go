package recommend

// Outcome is the closed result type of a recommendation query. Callers
// switch on the concrete type; there is no status string to compare.
type Outcome interface {
	isOutcome()
}

// Direct is a resolved recommendation list: Posters[i] belongs to Titles[i].
type Direct struct {
	Titles  []string
	Posters []string
}

// Ambiguous means several titles matched and the user must pick one by its
// 1-based position in Options.
type Ambiguous struct {
	Options []string
}

// Empty means no match and no close lexical candidate.
type Empty struct{}

// Failure means the data or service layer errored.
type Failure struct {
	Message string
}

func (Direct) isOutcome()    {}
func (Ambiguous) isOutcome() {}
func (Empty) isOutcome()     {}
func (Failure) isOutcome()   {}
