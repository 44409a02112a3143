package taxa

// Assignment is a classifier call at a single rank.
type Assignment struct {
	Taxon      string
	Confidence float64
	Ambiguous  bool
}

// Record is one classified read. Records are produced by the classifier
// reader and never modified afterwards.
type Record struct {
	Read    string
	Species Assignment
	Genus   Assignment
}

// At returns the assignment for the given rank.
func (r Record) At(rank Rank) Assignment {
	if rank == Genus {
		return r.Genus
	}
	return r.Species
}
