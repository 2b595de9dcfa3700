package main

import "testing"

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Secret1", true},
		{"too short", "Ab1", false},
		{"no upper case", "secret1", false},
		{"no lower case", "SECRET1", false},
		{"no digit", "Secretive", false},
		{"empty", "", false},
		{"over bcrypt limit", "Aa1" + string(make([]byte, 75)), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := newValidator()
			v.checkPassword(tc.password, "password")
			if v.hasErrors() == tc.valid {
				t.Errorf("checkPassword(%q): hasErrors = %v, want %v", tc.password, v.hasErrors(), !tc.valid)
			}
		})
	}
}

func TestCheckUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		valid    bool
	}{
		{"valid", "alice_42", true},
		{"too short", "ab", false},
		{"bad characters", "alice!", false},
		{"spaces", "alice smith", false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := newValidator()
			v.checkUsername(tc.username)
			if v.hasErrors() == tc.valid {
				t.Errorf("checkUsername(%q): hasErrors = %v, want %v", tc.username, v.hasErrors(), !tc.valid)
			}
		})
	}
}

func TestCheckColor(t *testing.T) {
	tests := []struct {
		color string
		valid bool
	}{
		{"#3498db", true},
		{"#FF0000", true},
		{"#ff00ZZ", false},
		{"FF0000", false},
		{"#FFF", false},
		{"", false},
	}
	for _, tc := range tests {
		t.Run(tc.color, func(t *testing.T) {
			v := newValidator()
			v.checkColor(tc.color)
			if v.hasErrors() == tc.valid {
				t.Errorf("checkColor(%q): hasErrors = %v, want %v", tc.color, v.hasErrors(), !tc.valid)
			}
		})
	}
}

func TestCheckOneOf(t *testing.T) {
	v := newValidator()
	v.checkOneOf("pending", "status", taskStatuses)
	if v.hasErrors() {
		t.Errorf("unexpected errors: %v", v.fieldErrors())
	}
	v.checkOneOf("done", "status", taskStatuses)
	if !v.hasErrors() {
		t.Error("expected an error for an unknown status")
	}
}

func TestValidatorKeepsFirstErrorPerField(t *testing.T) {
	v := newValidator()
	v.checkCond(false, "name", "first")
	v.checkCond(false, "name", "second")
	v.checkCond(false, "color", "third")

	errs := v.fieldErrors()
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}
	if errs[0].Field != "name" || errs[0].Message != "first" {
		t.Errorf("got first error %+v, want name/first", errs[0])
	}
	if errs[1].Field != "color" {
		t.Errorf("got second error %+v, want field color", errs[1])
	}
}
