package validation

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
		errs     []string
		strength Strength
	}{
		{"too short", "abc", false, []string{MsgPasswordLength, MsgPasswordUpper, MsgPasswordSpecial}, Weak},
		{"valid strong", "Abcdef1!", true, []string{}, Strong},
		{"lowercase only", "abcdefg", false, []string{MsgPasswordUpper, MsgPasswordSpecial}, Weak},
		{"whitespace", "Abc def!", false, []string{MsgPasswordWhitespace}, Medium},
		{"tab counts as whitespace", "Abc\tdef!", false, []string{MsgPasswordWhitespace}, Medium},
		{"valid medium", "Abcde!", true, []string{}, Medium},
		{"long and complete", "Abcdefgh12!?", true, []string{}, Strong},
		{"empty", "", false, []string{MsgPasswordLength, MsgPasswordUpper, MsgPasswordLower, MsgPasswordSpecial}, Weak},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidatePassword(tc.password)
			if got.Valid != tc.valid {
				t.Fatalf("expected valid=%v, got %v (%v)", tc.valid, got.Valid, got.Errors)
			}
			if !reflect.DeepEqual(got.Errors, tc.errs) {
				t.Fatalf("expected errors %q, got %q", tc.errs, got.Errors)
			}
			if got.Strength != tc.strength {
				t.Fatalf("expected strength %s, got %s (score %d)", tc.strength, got.Strength, got.Score)
			}
		})
	}
}

func TestPasswordScore(t *testing.T) {
	cases := map[string]int{
		"aaaaaa":       1,
		"Aa1!aa":       4,
		"Aa1!aaaa":     5,
		"Aa1!aaaaaaaa": 6,
		"123456":       1,
		"ÁÉÍÓÚ!":       1, // only ASCII letters count as upper/lower
	}
	for pw, want := range cases {
		if got := ValidatePassword(pw).Score; got != want {
			t.Fatalf("%q: expected score %d, got %d", pw, want, got)
		}
	}
	if ValidatePassword("Aa1!a").Strength != Weak {
		t.Fatal("passwords under the minimum length are always weak")
	}
}

func TestValidateEmail(t *testing.T) {
	long := strings.Repeat("a", 245) + "@exemplo.com" // 257 chars
	cases := []struct {
		email string
		valid bool
		errs  []string
	}{
		{"a@b.co", true, []string{}},
		{"maria.silva+financas@exemplo.com.br", true, []string{}},
		{"not-an-email", false, []string{MsgEmailFormat}},
		{"a@b", false, []string{MsgEmailFormat}},
		{"a b@c.com", false, []string{MsgEmailFormat}},
		{"", false, []string{MsgEmailRequired}},
		{long, false, []string{MsgEmailTooLong}},
	}
	for _, tc := range cases {
		got := ValidateEmail(tc.email)
		if got.Valid != tc.valid || !reflect.DeepEqual(got.Errors, tc.errs) {
			t.Fatalf("%.20q: expected %v %q, got %v %q", tc.email, tc.valid, tc.errs, got.Valid, got.Errors)
		}
	}

	// 255 characters split between local part and domain.
	at255 := strings.Repeat("x", 120) + "@" + strings.Repeat("y", 130) + ".com"
	if len(at255) != 255 {
		t.Fatalf("fixture has %d characters", len(at255))
	}
	if ValidateEmail(at255).Valid {
		t.Fatal("255-character email must be rejected")
	}
}

func TestValidateName(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
		errs  []string
	}{
		{"João da Silva", true, []string{}},
		{"  Ana  ", true, []string{}},
		{"Anne-Marie D'Ávila", true, []string{}},
		{"Zoë", true, []string{}},
		{"", false, []string{MsgNameRequired}},
		{"   ", false, []string{MsgNameRequired}},
		{"J", false, []string{MsgNameTooShort}},
		{strings.Repeat("a", 101), false, []string{MsgNameTooLong}},
		{strings.Repeat("á", 100), true, []string{}},
		{"R2D2", false, []string{MsgNameCharset}},
		{"X!", false, []string{MsgNameCharset}},
		{"1", false, []string{MsgNameTooShort, MsgNameCharset}},
	}
	for _, tc := range cases {
		got := ValidateName(tc.name)
		if got.Valid != tc.valid || !reflect.DeepEqual(got.Errors, tc.errs) {
			t.Fatalf("%.20q: expected %v %q, got %v %q", tc.name, tc.valid, tc.errs, got.Valid, got.Errors)
		}
	}
}
