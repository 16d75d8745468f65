package model

// Genre is a content-category tag from the reference catalog
// (`genres` table). Films hold copies, never ownership.
type Genre struct {
	ID   int    // genres.id
	Name string // genres.name
}

// MPA is a content rating from the reference catalog (`mpa` table).
type MPA struct {
	ID   int    // mpa.id
	Name string // mpa.name (e.g. "PG-13")
}
