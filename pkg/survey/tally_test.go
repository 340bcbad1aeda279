package survey

import "testing"

func responses(counts ...int) []Response {
	var out []Response
	for i, n := range counts {
		for j := 0; j < n; j++ {
			out = append(out, Response{Choice: Choices[i]})
		}
	}
	return out
}

func TestTally(t *testing.T) {
	tests := []struct {
		name    string
		in      []Response
		overall int
		shares  [5]float64
		votes   int
	}{
		{"no votes", nil, 0, [5]float64{}, 0},
		{"all calm", responses(4), 0, [5]float64{100}, 4},
		{"all extreme", responses(0, 0, 0, 0, 2), 100, [5]float64{0, 0, 0, 0, 100}, 2},
		{"even spread", responses(1, 1, 1, 1, 1), 50, [5]float64{20, 20, 20, 20, 20}, 5},
		// (0*1 + 25*2 + 50*0 + 75*0 + 100*0) / 3 = 16.67
		{"rounding", responses(1, 2), 17, [5]float64{33, 67}, 3},
		// 25*1 / 2 = 12.5 rounds half away from zero
		{"half", responses(1, 1), 13, [5]float64{50, 50}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tally(tt.in)
			if got.Overall != tt.overall {
				t.Errorf("Overall = %d, want %d", got.Overall, tt.overall)
			}
			if got.Shares != tt.shares {
				t.Errorf("Shares = %v, want %v", got.Shares, tt.shares)
			}
			if got.Votes != tt.votes {
				t.Errorf("Votes = %d, want %d", got.Votes, tt.votes)
			}
		})
	}
}

func TestTallyIgnoresUnknownChoices(t *testing.T) {
	in := append(responses(0, 1), Response{Choice: "Option9"}, Response{})
	got := Tally(in)
	if got.Votes != 1 || got.Overall != 25 {
		t.Errorf("Tally = %+v, want one vote at 25", got)
	}
}

func TestChoice(t *testing.T) {
	for i, c := range Choices {
		if c.Index() != i+1 {
			t.Errorf("%s.Index() = %d", c, c.Index())
		}
		if c.Severity() != i*25 {
			t.Errorf("%s.Severity() = %d", c, c.Severity())
		}
		if parsed, err := ParseChoice(string(c)); err != nil || parsed != c {
			t.Errorf("ParseChoice(%s) = %v, %v", c, parsed, err)
		}
	}
	if _, err := ParseChoice("option1"); err == nil {
		t.Error("ParseChoice should be case sensitive")
	}
	if Choice("x").Index() != 0 {
		t.Error("unknown choice should have index 0")
	}
}
