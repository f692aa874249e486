package dsl

import (
	"os"
	"strconv"
)

// SetProperty sets a user property on the project.
func (p *Project) SetProperty(name, value string) { p.props[name] = value }

// LookupProperty returns a user property.
func (p *Project) LookupProperty(name string) (string, bool) {
	v, ok := p.props[name]
	return v, ok
}

// InitProperties sets the basedir property to the working directory.
func (p *Project) InitProperties() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	p.SetProperty("basedir", wd)
	return nil
}

// Property is a typed view of a project property. Unset or unparsable
// values fall back to Default.
type Property[T any] struct {
	Name    string
	Default func() T
	parse   func(string) (T, error)
	format  func(T) string
}

// Get returns the property value on p.
func (pr Property[T]) Get(p *Project) T {
	if raw, ok := p.LookupProperty(pr.Name); ok {
		if v, err := pr.parse(raw); err == nil {
			return v
		}
	}
	if pr.Default != nil {
		return pr.Default()
	}
	var zero T
	return zero
}

// Set stores v on p.
func (pr Property[T]) Set(p *Project, v T) { p.SetProperty(pr.Name, pr.format(v)) }

// IsSet reports whether the property has a value on p.
func (pr Property[T]) IsSet(p *Project) bool {
	_, ok := p.LookupProperty(pr.Name)
	return ok
}

// StringProperty declares a string property.
func StringProperty(name, def string) Property[string] {
	return Property[string]{
		Name:    name,
		Default: func() string { return def },
		parse:   func(s string) (string, error) { return s, nil },
		format:  func(s string) string { return s },
	}
}

// BoolProperty declares a boolean property.
func BoolProperty(name string, def bool) Property[bool] {
	return Property[bool]{
		Name:    name,
		Default: func() bool { return def },
		parse:   strconv.ParseBool,
		format:  strconv.FormatBool,
	}
}

// IntProperty declares an integer property.
func IntProperty(name string, def int) Property[int] {
	return Property[int]{
		Name:    name,
		Default: func() int { return def },
		parse:   strconv.Atoi,
		format:  strconv.Itoa,
	}
}

// FloatProperty declares a floating point property.
func FloatProperty(name string, def float64) Property[float64] {
	return Property[float64]{
		Name:    name,
		Default: func() float64 { return def },
		parse:   func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
		format:  func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) },
	}
}
