package api

type Convertible[T any] interface {
	// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
	// It should be responsible for any normalization required to ensure consistency
	// across the API boundary.
	ToAPIType() (T, error)
}

// convertAll wraps each domain value and converts it to its API type.
// The result is never nil, so empty lists serialize as [].
func convertAll[D any, T any](in []D, wrap func(D) Convertible[T]) ([]T, error) {
	out := make([]T, 0, len(in))
	for _, d := range in {
		v, err := wrap(d).ToAPIType()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
