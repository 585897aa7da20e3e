package utils

import "testing"

type sample struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
	Kind  string  `json:"kind" validate:"oneof=a b"`
}

func TestValidateStruct(t *testing.T) {
	if err := ValidateStruct(&sample{Name: "x", Price: 1, Kind: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ValidateStruct(&sample{Price: -1, Kind: "c"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := AsAppError(err)
	if appErr.Code != CodeValidation {
		t.Fatalf("code = %q, want %q", appErr.Code, CodeValidation)
	}
	for _, field := range []string{"name", "price", "kind"} {
		if _, ok := appErr.Details[field]; !ok {
			t.Errorf("expected details for %q, got %v", field, appErr.Details)
		}
	}
}
