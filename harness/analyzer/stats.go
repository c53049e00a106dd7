package analyzer

// Band is an inclusive word-count range.
type Band struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DefaultBand is the declared target length of a generated utterance.
var DefaultBand = Band{Min: 120, Max: 140}

// Contains reports whether words lies inside the band.
func (b Band) Contains(words int) bool {
	return words >= b.Min && words <= b.Max
}

// Stats aggregates analyses across a run. Rates are fractions in [0,1].
type Stats struct {
	Total      int
	TotalWords int
	AvgWords   float64
	MinWords   int
	MaxWords   int

	InBand   int
	BandRate float64

	Period, Exclamation, Question, NoTerminal                 int
	PeriodRate, ExclamationRate, QuestionRate, NoTerminalRate float64

	CutOff, Narration, Complete             int
	CutOffRate, NarrationRate, CompleteRate float64
}

// Aggregate analyses every text and summarises the results.
func Aggregate(texts []string, band Band) (Stats, []Analysis) {
	analyses := make([]Analysis, 0, len(texts))
	for _, t := range texts {
		analyses = append(analyses, Analyze(t))
	}
	return Summarize(analyses, band), analyses
}

// Summarize folds analyses into Stats.
func Summarize(analyses []Analysis, band Band) Stats {
	s := Stats{Total: len(analyses)}
	if s.Total == 0 {
		return s
	}

	s.MinWords = analyses[0].Words
	for _, a := range analyses {
		s.TotalWords += a.Words
		if a.Words < s.MinWords {
			s.MinWords = a.Words
		}
		if a.Words > s.MaxWords {
			s.MaxWords = a.Words
		}
		if band.Contains(a.Words) {
			s.InBand++
		}
		switch a.Terminal {
		case TerminalPeriod:
			s.Period++
		case TerminalExclamation:
			s.Exclamation++
		case TerminalQuestion:
			s.Question++
		default:
			s.NoTerminal++
		}
		if a.CutOff {
			s.CutOff++
		}
		if a.Narration {
			s.Narration++
		}
		if a.Complete {
			s.Complete++
		}
	}

	n := float64(s.Total)
	s.AvgWords = float64(s.TotalWords) / n
	s.BandRate = float64(s.InBand) / n
	s.PeriodRate = float64(s.Period) / n
	s.ExclamationRate = float64(s.Exclamation) / n
	s.QuestionRate = float64(s.Question) / n
	s.NoTerminalRate = float64(s.NoTerminal) / n
	s.CutOffRate = float64(s.CutOff) / n
	s.NarrationRate = float64(s.Narration) / n
	s.CompleteRate = float64(s.Complete) / n
	return s
}
