package filter

import (
	"fmt"
	"slices"
	"strings"
)

// Predicate defines a function that returns true if the given item matches a filter value.
type Predicate[T any] func(item T, filterValue string) bool

// StringValueProvider extracts a single string value from an item of type T.
type StringValueProvider[T any] func(T) string

// Options holds the matchers a filter key can select.
type Options[T any] struct {
	matchers map[string]Predicate[T]
}

// Option configures filter Options.
type Option[T any] func(*Options[T]) error

// NewOptions creates Options with no matchers and applies the given options.
func NewOptions[T any](opt ...Option[T]) (Options[T], error) {
	opts := Options[T]{matchers: make(map[string]Predicate[T])}

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return Options[T]{}, err
		}
	}

	return opts, nil
}

// NormalizeString lowercases s and trims surrounding whitespace.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Equals matches when the provided value equals the filter value, ignoring case.
func Equals[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return NormalizeString(provider(item)) == NormalizeString(val)
	}
}

// Partial matches when the provided value contains the filter value, ignoring case.
func Partial[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return strings.Contains(NormalizeString(provider(item)), NormalizeString(val))
	}
}

// WithMatcher adds or overrides the matcher for key.
func WithMatcher[T any](key string, p Predicate[T]) Option[T] {
	return func(o *Options[T]) error {
		k := NormalizeString(key)
		if k == "" {
			return fmt.Errorf("filter key cannot be empty")
		}
		if p == nil {
			return fmt.Errorf("matcher for filter key '%s' cannot be nil", k)
		}
		o.matchers[k] = p
		return nil
	}
}

// Match reports whether item satisfies every filter. Filters with an empty value are ignored,
// filters naming a key without a matcher are an error.
func Match[T any](item T, filters map[string]string, opts ...Option[T]) (bool, error) {
	filterOpts, err := NewOptions(opts...)
	if err != nil {
		return false, err
	}

	return filterOpts.match(item, filters)
}

// Items returns the items satisfying every filter, in their original order.
func Items[T any](items []T, filters map[string]string, opts ...Option[T]) ([]T, error) {
	filterOpts, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := filterOpts.match(item, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}

	return matched, nil
}

func (o Options[T]) match(item T, filters map[string]string) (bool, error) {
	for key, val := range filters {
		k := NormalizeString(key)
		if k == "" || strings.TrimSpace(val) == "" {
			continue
		}

		matcher, ok := o.matchers[k]
		if !ok {
			return false, fmt.Errorf("unsupported filter '%s', must be one of: %s", k, strings.Join(o.keys(), ", "))
		}
		if !matcher(item, val) {
			return false, nil
		}
	}

	return true, nil
}

func (o Options[T]) keys() []string {
	keys := make([]string, 0, len(o.matchers))
	for k := range o.matchers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
