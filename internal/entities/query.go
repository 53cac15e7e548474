package entities

// Query is one search term of a run together with the hh area it is scoped to.
type Query struct {
	Text string
	// Area is an hh area id, or a region name until it is resolved.
	Area string
}
