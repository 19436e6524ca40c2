package validation_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/segmenter/pkg/validation"
)

type sample struct {
	Count int     `json:"count" validate:"gt=0"`
	Price float64 `json:"price" validate:"gt=0"`
	Stage string  `json:"stage" validate:"omitempty,oneof=None Staging"`
	Note  string  `validate:"required"`
}

func TestStructValid(t *testing.T) {
	s := sample{Count: 1, Price: 0.5, Stage: "None", Note: "ok"}
	if err := validation.Struct(&s); err != nil {
		t.Fatalf("Struct() error = %v", err)
	}
}

func TestStructFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     sample
		wantField string
		wantMsg   string
	}{
		{"zero count", sample{Count: 0, Price: 1, Note: "x"}, "count", "count must be greater than 0"},
		{"negative price", sample{Count: 1, Price: -1, Note: "x"}, "price", "price must be greater than 0"},
		{"bad stage", sample{Count: 1, Price: 1, Stage: "Live", Note: "x"}, "stage", "stage must be one of: None Staging"},
		{"missing note", sample{Count: 1, Price: 1}, "Note", "Note is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Struct(&tt.input)

			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() error = %v, want *validation.Error", err)
			}
			if len(verr.Fields) != 1 {
				t.Fatalf("fields = %d, want 1: %v", len(verr.Fields), verr.Fields)
			}
			if verr.Fields[0].Field != tt.wantField {
				t.Errorf("field = %s, want %s", verr.Fields[0].Field, tt.wantField)
			}
			if verr.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", verr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestStructJoinsMessages(t *testing.T) {
	err := validation.Struct(&sample{})

	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("Struct() error = %v, want *validation.Error", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(verr.Fields))
	}

	want := "count must be greater than 0; price must be greater than 0; Note is required"
	if verr.Error() != want {
		t.Errorf("Error() = %q, want %q", verr.Error(), want)
	}
}
