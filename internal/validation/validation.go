// Package validation checks the credentials supplied at sign-up.
//
// Validators never fail: malformed input is what they report. Each returns
// every rule the input violates, in a stable order, so a form can show all
// problems at once.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinNameLength     = 2
	MaxNameLength     = 100
	MaxEmailLength    = 254
	MinPasswordLength = 6

	// SpecialCharacters lists the symbols that satisfy the password rule.
	SpecialCharacters = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Violation messages, in Portuguese as shown to users.
const (
	MsgNameRequired  = "Nome é obrigatório"
	MsgNameTooShort  = "Nome deve ter pelo menos 2 caracteres"
	MsgNameTooLong   = "Nome muito longo (máximo 100 caracteres)"
	MsgNameCharset   = "Nome deve conter apenas letras, espaços, hífens e apóstrofos"
	MsgEmailRequired = "Email é obrigatório"
	MsgEmailFormat   = "Formato de email inválido"
	MsgEmailTooLong  = "Email muito longo"

	MsgPasswordLength     = "A senha deve ter pelo menos 6 caracteres"
	MsgPasswordUpper      = "A senha deve conter pelo menos uma letra maiúscula"
	MsgPasswordLower      = "A senha deve conter pelo menos uma letra minúscula"
	MsgPasswordSpecial    = "A senha deve conter pelo menos um caractere especial (" + SpecialCharacters + ")"
	MsgPasswordWhitespace = "A senha não pode conter espaços em branco"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Result is the outcome of a validator.
type Result struct {
	Valid  bool     `json:"valido"`
	Errors []string `json:"erros"`
}

func newResult(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateName checks a display name after trimming surrounding space.
func ValidateName(name string) Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return newResult([]string{MsgNameRequired})
	}

	var errs []string
	switch n := utf8.RuneCountInString(name); {
	case n < MinNameLength:
		errs = append(errs, MsgNameTooShort)
	case n > MaxNameLength:
		errs = append(errs, MsgNameTooLong)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '-' && r != '\'' {
			errs = append(errs, MsgNameCharset)
			break
		}
	}
	return newResult(errs)
}

// ValidateEmail checks presence, length and local@domain.tld shape.
func ValidateEmail(email string) Result {
	if email == "" {
		return newResult([]string{MsgEmailRequired})
	}
	var errs []string
	if !emailPattern.MatchString(email) {
		errs = append(errs, MsgEmailFormat)
	}
	if len(email) > MaxEmailLength {
		errs = append(errs, MsgEmailTooLong)
	}
	return newResult(errs)
}
