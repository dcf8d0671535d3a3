// Package collection has the generic slice helpers the catalog uses to
// shape store results. Results are never nil, so they encode as JSON [].
//
//	books := collection.Filter(categories, func(c models.Category) bool { return c.Type == "book" })
//	labels := collection.Map(books, func(c models.Category) string { return c.Name.In("pt") })
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter keeps the elements of s for which fn returns true, in order.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// KeyBy indexes s by the key fn returns. Later elements win.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}
