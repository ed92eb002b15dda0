package domain

// AnonymousUser is recorded when a comment is posted without a name.
const AnonymousUser = "Anonymous"

// Comment is a reader note attached to a book by identifier.
type Comment struct {
	Record `json:",inline"`
	BookID string `json:"book_id"`
	User   string `json:"user"`
	Text   string `json:"text"`
}
