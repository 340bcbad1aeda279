package card

import (
	"github.com/matzehuels/pollcard/pkg/errors"
)

// PercentLabel maps an upper bound of the overall percentage to a
// qualitative caption shown under the gauge.
type PercentLabel struct {
	Text string `json:"text" toml:"text"`
	UpTo int    `json:"up_to" toml:"up_to"`
}

// Option is one answer bucket with its share of respondents.
type Option struct {
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
}

// Request carries everything a render call needs. It is treated as an
// immutable value; renderers never modify it.
type Request struct {
	// Date is the poll date in DD.MM.YYYY form.
	Date string `json:"date"`
	// Question is the description text; wrapped, never truncated.
	Question string `json:"question"`
	// Overall drives the needle and the qualitative label lookup.
	Overall int `json:"overall"`
	// Labels are scanned in order; see [QualitativeLabel].
	Labels []PercentLabel `json:"labels,omitempty"`
	// Options are drawn top to bottom in the given order.
	Options []Option `json:"options"`
	// Votes is the number of responses shown in the footer.
	Votes int `json:"votes"`
	// Selected is the 1-based position of the viewer's own answer, 0 for none.
	Selected int `json:"selected,omitempty"`
}

// Validate rejects requests that would produce a malformed image.
func (r Request) Validate() error {
	if _, err := errors.ParseDate(r.Date); err != nil {
		return err
	}
	if r.Overall < 0 || r.Overall > 100 {
		return errors.New(errors.ErrCodeInvalidPercentage, "overall percentage %d out of range [0, 100]", r.Overall)
	}
	if r.Votes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "votes count cannot be negative (got %d)", r.Votes)
	}
	if len(r.Options) == 0 {
		return errors.New(errors.ErrCodeEmptyOptions, "at least one option is required")
	}
	for i, o := range r.Options {
		if err := errors.ValidatePercentage(o.Label, o.Percentage); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPercentage, err, "option %d", i+1)
		}
	}
	if r.Selected < 0 || r.Selected > len(r.Options) {
		return errors.New(errors.ErrCodeInvalidChoice, "selected option %d out of range [0, %d]", r.Selected, len(r.Options))
	}
	return nil
}
