package models

import (
	"fmt"
	"strings"
)

// Category groups models by what they are good at.
type Category string

const (
	General      Category = "general"
	Code         Category = "code"
	Vision       Category = "vision"
	LongContext  Category = "long_context"
	Fast         Category = "fast"
	Experimental Category = "experimental"
)

var Categories = []Category{General, Code, Vision, LongContext, Fast, Experimental}

// ParseCategory accepts any casing, so both GENERAL and general are valid.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown model category %q", s)
}

func (c Category) String() string {
	return string(c)
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
