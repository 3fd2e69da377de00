package domain

// ResolutionKind tags the outcome of a rule lookup.
type ResolutionKind int

const (
	ResolutionNone ResolutionKind = iota
	ResolutionUnique
	ResolutionAmbiguous
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionUnique:
		return "unique"
	case ResolutionAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// Resolution is Unique(rule), None, or Ambiguous(candidates). Callers switch
// on Kind; Rule is only meaningful for ResolutionUnique.
type Resolution struct {
	Kind       ResolutionKind
	Key        RuleKey
	Rule       FeeStructure
	Candidates []FeeStructure
}

func NewResolution(key RuleKey, matches []FeeStructure) Resolution {
	switch len(matches) {
	case 0:
		return Resolution{Kind: ResolutionNone, Key: key}
	case 1:
		return Resolution{Kind: ResolutionUnique, Key: key, Rule: matches[0]}
	default:
		return Resolution{Kind: ResolutionAmbiguous, Key: key, Candidates: matches}
	}
}

// Structure unwraps the resolution into the single rule or a typed error.
func (r Resolution) Structure() (FeeStructure, error) {
	switch r.Kind {
	case ResolutionUnique:
		return r.Rule, nil
	case ResolutionAmbiguous:
		ids := make([]string, 0, len(r.Candidates))
		for _, c := range r.Candidates {
			ids = append(ids, c.ID.String())
		}
		return FeeStructure{}, &AmbiguousRuleError{
			CampusID:     r.Key.CampusID,
			Grade:        r.Key.Grade,
			Frequency:    r.Key.Frequency,
			CandidateIDs: ids,
		}
	default:
		return FeeStructure{}, &NoApplicableRuleError{
			CampusID:  r.Key.CampusID,
			Grade:     r.Key.Grade,
			Frequency: r.Key.Frequency,
		}
	}
}
