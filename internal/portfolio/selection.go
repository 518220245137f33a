// Package portfolio manages the set of selected tickers and averages their
// NAV series into one combined series.
package portfolio

import "slices"

// Selection is an ordered set of tickers. Insertion order is display order.
// It is not safe for concurrent use; Manager guards it.
type Selection struct {
	tickers []string
}

// NewSelection creates a selection holding tickers in order, dropping repeats.
func NewSelection(tickers ...string) *Selection {
	s := &Selection{}
	for _, t := range tickers {
		s.Add(t)
	}
	return s
}

// Add appends ticker unless it is already present. It reports whether the
// selection changed.
func (s *Selection) Add(ticker string) bool {
	if s.Contains(ticker) {
		return false
	}
	s.tickers = append(s.tickers, ticker)
	return true
}

// Remove drops ticker. It reports whether the selection changed.
func (s *Selection) Remove(ticker string) bool {
	i := slices.Index(s.tickers, ticker)
	if i < 0 {
		return false
	}
	s.tickers = slices.Delete(s.tickers, i, i+1)
	return true
}

// Contains reports whether ticker is selected.
func (s *Selection) Contains(ticker string) bool {
	return slices.Contains(s.tickers, ticker)
}

// Reset empties the selection.
func (s *Selection) Reset() {
	s.tickers = nil
}

// Len returns the number of selected tickers.
func (s *Selection) Len() int {
	return len(s.tickers)
}

// Tickers returns a copy of the selected tickers in display order.
func (s *Selection) Tickers() []string {
	out := make([]string, len(s.tickers))
	copy(out, s.tickers)
	return out
}
