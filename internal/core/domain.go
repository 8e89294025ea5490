package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "receita"
	Expense Kind = "despesa"
)

// DateLayout is the wire and storage format for transaction dates.
const DateLayout = "2006-01-02"

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#3B82F6"

type (
	// Kind discriminates income from expense records.
	Kind string

	Date struct {
		time.Time
	}

	User struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	Category struct {
		ID     string
		UserID string
		Name   string
		Kind   Kind
		Color  string
	}

	Transaction struct {
		ID          string
		UserID      string
		Date        Date
		Description string
		CategoryID  string
		Category    string // resolved category name, read side only
		Amount      decimal.Decimal
		Kind        Kind
		Method      string // forma de pagamento or forma de recebimento
	}
)

var (
	ErrInvalidKind          = errors.New("invalid kind")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyCategory        = errors.New("empty category")
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidColor         = errors.New("invalid color")
	ErrInvalidMethod        = errors.New("invalid payment method")
	ErrNotFound             = errors.New("not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryKindMismatch = errors.New("category kind does not match transaction kind")
	ErrCategoryInUse        = errors.New("category has transactions")
	ErrCategoryExists       = errors.New("category already exists")
	ErrEmailTaken           = errors.New("email already registered")
)

// ParseKind accepts the wire names of both kinds.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Income, Expense:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > 50 {
		return errors.New("category name too long (max 50 characters)")
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	if c.Color != "" && !validColor(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.CategoryID) == "" && strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !ValidMethod(t.Kind, t.Method) {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, t.Method)
	}
	return nil
}

// Month returns the transaction's calendar month (1-12).
func (t Transaction) Month() int {
	return int(t.Date.Month())
}

func (t Transaction) Year() int {
	return t.Date.Year()
}

// validColor accepts #RGB and #RRGGBB hex colors.
func validColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
