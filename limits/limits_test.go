package limits

import (
	"errors"
	"testing"
)

func TestValidateInputCount(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr error
	}{
		{"zero inputs", 0, ErrNoInputs},
		{"negative", -1, ErrNoInputs},
		{"single input", 1, nil},
		{"at limit", MaxInputs, nil},
		{"over limit", MaxInputs + 1, ErrTooManyInputs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputCount(tt.n)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateInputCount(%d) = %v, want nil", tt.n, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateInputCount(%d) = %v, want %v", tt.n, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		valid         bool
	}{
		{"typical", 640, 360, true},
		{"one pixel", 1, 1, true},
		{"at limit", MaxDimension, MaxDimension, true},
		{"zero width", 0, 360, false},
		{"zero height", 640, 0, false},
		{"negative", -640, 360, false},
		{"too wide", MaxDimension + 1, 2, false},
		{"too tall", 2, MaxDimension + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.width, tt.height)
			if tt.valid && err != nil {
				t.Errorf("ValidateDimensions(%d, %d) = %v, want nil", tt.width, tt.height, err)
			}
			if !tt.valid && !errors.Is(err, ErrDimensionOutOfRange) {
				t.Errorf("ValidateDimensions(%d, %d) = %v, want ErrDimensionOutOfRange", tt.width, tt.height, err)
			}
		})
	}
}

func TestValidateFrameBytes(t *testing.T) {
	if err := ValidateFrameBytes(MaxFrameBytes); err != nil {
		t.Errorf("ValidateFrameBytes(MaxFrameBytes) = %v, want nil", err)
	}
	if err := ValidateFrameBytes(MaxFrameBytes + 1); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("ValidateFrameBytes(MaxFrameBytes+1) = %v, want ErrFrameTooLarge", err)
	}
}

// TestDescriptionBudget verifies the default description bound fits a
// full-size layout: roughly 100 bytes per input for declaration and overlay.
func TestDescriptionBudget(t *testing.T) {
	const perInput = 110
	if MaxInputs*perInput > MaxDescriptionSize {
		t.Errorf("MaxDescriptionSize %d too small for %d inputs", MaxDescriptionSize, MaxInputs)
	}
}
