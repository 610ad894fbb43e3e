package utils

import "testing"

func TestCustomValidators(t *testing.T) {
	type form struct {
		Username string `validate:"required,username"`
		Mobile   string `validate:"required,mobile"`
		Password string `validate:"required,strong_password"`
	}

	valid := form{Username: "ada_obi", Mobile: "+2348012345678", Password: "sekret123"}
	if err := ValidateStruct(valid); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	cases := []struct {
		name string
		form form
	}{
		{"username too short", form{Username: "ab", Mobile: "+2348012345678", Password: "sekret123"}},
		{"username bad chars", form{Username: "ada obi!", Mobile: "+2348012345678", Password: "sekret123"}},
		{"mobile letters", form{Username: "ada_obi", Mobile: "080-CALL-ME", Password: "sekret123"}},
		{"mobile too short", form{Username: "ada_obi", Mobile: "12345", Password: "sekret123"}},
		{"password no digits", form{Username: "ada_obi", Mobile: "+2348012345678", Password: "lettersonly"}},
	}
	for _, tc := range cases {
		if err := ValidateStruct(tc.form); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}

func TestFormatValidationErrors(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
		Bio   string `validate:"max=5"`
	}

	err := ValidateStruct(form{Email: "not-an-email", Bio: "way past the limit"})
	if err == nil {
		t.Fatal("invalid form accepted")
	}

	fields := FormatValidationErrors(err)
	if _, ok := fields["email"]; !ok {
		t.Errorf("missing Email entry: %v", fields)
	}
	if _, ok := fields["bio"]; !ok {
		t.Errorf("missing Bio entry: %v", fields)
	}
}
