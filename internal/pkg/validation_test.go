package pkg

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func TestRegisterValidators_Letters(t *testing.T) {
	if err := RegisterValidators(); err != nil {
		t.Fatalf("RegisterValidators: %v", err)
	}
	// A second call must be harmless.
	if err := RegisterValidators(); err != nil {
		t.Fatalf("second RegisterValidators: %v", err)
	}

	v := binding.Validator.Engine().(*validator.Validate)

	tests := []struct {
		value string
		valid bool
	}{
		{"Wargames", true},
		{"Économie", true},
		{"ボードゲーム", true},
		{"Strategy Games", false},
		{"Games2", false},
		{"Deck-Building", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := v.Var(tt.value, LettersTag)
			if (err == nil) != tt.valid {
				t.Errorf("letters(%q) valid=%v, want %v (err=%v)", tt.value, err == nil, tt.valid, err)
			}
		})
	}
}
