package domain

import "time"

// Book is a catalog entry. ID is assigned by the store and never changes.
type Book struct {
	ID               int64  `json:"id"`
	Author           string `json:"author"`
	IsElectronicBook bool   `json:"isElectronicBook"`
	Name             string `json:"name"`
	Year             int    `json:"year"`
}

// BookInput is the client-supplied representation used for create and update.
// It carries no ID; ids in request bodies are ignored.
type BookInput struct {
	Name             string `json:"name" yaml:"name" validate:"required"`
	Author           string `json:"author" yaml:"author"`
	Year             int    `json:"year" yaml:"year"`
	IsElectronicBook bool   `json:"isElectronicBook" yaml:"isElectronicBook"`
}

// ToBook builds a Book with the given id from the input fields.
func (in BookInput) ToBook(id int64) Book {
	return Book{
		ID:               id,
		Name:             in.Name,
		Author:           in.Author,
		Year:             in.Year,
		IsElectronicBook: in.IsElectronicBook,
	}
}

type BookEventType string

const (
	EventBookCreated BookEventType = "book.created"
	EventBookUpdated BookEventType = "book.updated"
	EventBookDeleted BookEventType = "book.deleted"
)

// BookEvent describes a committed change to the catalog.
type BookEvent struct {
	ID         string        `json:"id"`
	Type       BookEventType `json:"type"`
	BookID     int64         `json:"bookId"`
	Book       *Book         `json:"book,omitempty"`
	RequestID  string        `json:"requestId,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}
