package store

import "time"

// BookModel is the GORM model backing the books table.
// ID is a bigserial, so Postgres never hands out a deleted id again.
type BookModel struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	Name             string `gorm:"not null"`
	Author           string `gorm:"not null;default:''"`
	Year             int    `gorm:"not null;default:0"`
	IsElectronicBook bool   `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (BookModel) TableName() string {
	return "books"
}
