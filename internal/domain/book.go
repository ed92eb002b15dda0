// Package domain contains the core entities of the BookBlog catalog.
package domain

import "strings"

// SystemOwner is recorded as the owner of books added without an identity.
const SystemOwner = "system"

// Book is a catalog entry.
type Book struct {
	Record        `json:",inline"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Year          string   `json:"year"`
	Tags          []string `json:"tags"`
	Description   string   `json:"description"`
	CoverPath     string   `json:"cover_path"` // relative to the data dir, "" when absent
	CoverBlurHash string   `json:"cover_blurhash,omitempty"`
	Owner         string   `json:"owner,omitempty"`
}

// HasCover reports whether the book references a cover asset.
func (b *Book) HasCover() bool {
	return b.CoverPath != ""
}

// SearchText returns the lowercase haystack matched by catalog search:
// title, author, year, tags and description joined by single spaces.
func (b *Book) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		b.Title,
		b.Author,
		b.Year,
		strings.Join(b.Tags, " "),
		b.Description,
	}, " "))
}

// BookInput carries the user-supplied fields of a new book.
type BookInput struct {
	Title         string
	Author        string
	Year          string
	Tags          string // comma separated
	Description   string
	CoverPath     string
	CoverBlurHash string
}

// ParseTags splits comma separated input into trimmed, non-empty tags.
// Empty input yields an empty, non-nil list so documents serialize "tags": [].
func ParseTags(input string) []string {
	tags := []string{}
	for part := range strings.SplitSeq(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
