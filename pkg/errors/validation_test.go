package errors

import (
	"math"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "21.05.2024", false},
		{"leap day", "29.02.2024", false},

		{"empty", "", true},
		{"iso layout", "2024-05-21", true},
		{"day out of range", "32.05.2024", true},
		{"missing year", "21.05", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDate) {
				t.Errorf("ParseDate(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidDate)
			}
		})
	}
}

func TestValidatePercentage(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"fraction", 0.5, false},
		{"hundred", 100, false},

		{"negative", -1, true},
		{"above hundred", 100.01, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePercentage("p", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePercentage(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateArtifactName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"avatar", "avatar", false},
		{"option key", "Option3", false},
		{"no option", "NoOption", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"with path /", "2024/avatar", true},
		{"with path \\", "2024\\avatar", true},
		{"traversal", "a..b", true},
		{"hidden", ".avatar", true},
		{"control char", "ava\x01tar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArtifactName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArtifactName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
