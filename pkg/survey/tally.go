package survey

import "math"

// Results aggregates the responses to one question.
type Results struct {
	// Counts holds the number of responses per choice, Option1 first.
	Counts [5]int
	// Shares holds each choice's share of all votes in percent, rounded.
	Shares [5]float64
	// Overall is the severity-weighted mean in percent, rounded.
	Overall int
	Votes   int
}

// Tally counts responses. Responses with an unknown choice are ignored.
// With no votes every share and the overall value are 0.
func Tally(responses []Response) Results {
	var res Results
	weighted := 0
	for _, r := range responses {
		i := r.Choice.Index()
		if i == 0 {
			continue
		}
		res.Counts[i-1]++
		res.Votes++
		weighted += r.Choice.Severity()
	}
	if res.Votes == 0 {
		return res
	}
	total := float64(res.Votes)
	for i, n := range res.Counts {
		res.Shares[i] = math.Round(100 * float64(n) / total)
	}
	res.Overall = int(math.Round(float64(weighted) / total))
	return res
}
