package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Strength grades a password.
type Strength string

const (
	Weak   Strength = "weak"
	Medium Strength = "medium"
	Strong Strength = "strong"
)

// PasswordResult extends Result with the strength indicator.
type PasswordResult struct {
	Result
	Score    int      `json:"pontuacao"`
	Strength Strength `json:"forca"`
}

type passwordTraits struct {
	length                       int
	upper, lower, digit, special bool
	whitespace                   bool
}

func inspect(password string) passwordTraits {
	tr := passwordTraits{length: utf8.RuneCountInString(password)}
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			tr.upper = true
		case r >= 'a' && r <= 'z':
			tr.lower = true
		case r >= '0' && r <= '9':
			tr.digit = true
		case strings.ContainsRune(SpecialCharacters, r):
			tr.special = true
		case unicode.IsSpace(r):
			tr.whitespace = true
		}
	}
	return tr
}

// ValidatePassword reports every violated password rule together with
// the strength score.
func ValidatePassword(password string) PasswordResult {
	tr := inspect(password)

	var errs []string
	if tr.length < MinPasswordLength {
		errs = append(errs, MsgPasswordLength)
	}
	if !tr.upper {
		errs = append(errs, MsgPasswordUpper)
	}
	if !tr.lower {
		errs = append(errs, MsgPasswordLower)
	}
	if !tr.special {
		errs = append(errs, MsgPasswordSpecial)
	}
	if tr.whitespace {
		errs = append(errs, MsgPasswordWhitespace)
	}

	score := tr.score()
	return PasswordResult{
		Result:   newResult(errs),
		Score:    score,
		Strength: strengthOf(tr.length, score),
	}
}

// score counts upper, lower, digit, special, length>=8 and length>=12.
func (tr passwordTraits) score() int {
	score := 0
	for _, ok := range []bool{tr.upper, tr.lower, tr.digit, tr.special, tr.length >= 8, tr.length >= 12} {
		if ok {
			score++
		}
	}
	return score
}

func strengthOf(length, score int) Strength {
	switch {
	case length < MinPasswordLength:
		return Weak
	case score >= 5:
		return Strong
	case score >= 3:
		return Medium
	default:
		return Weak
	}
}
