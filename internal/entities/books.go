package entities

import "strings"

// PlaceholderTitle is substituted when a book is saved with a blank title.
const PlaceholderTitle = "Untitled"

// Book is a writing project. The id is generated client-side, is immutable,
// and joins the local row with its remote mirror document.
//
// Timestamps are unix milliseconds set by callers; the autoUpdateTime tags
// keep gorm from stamping its own second-resolution values on writes.
type Book struct {
	ID            string `gorm:"primaryKey;column:id" json:"id"`
	Title         string `gorm:"column:title" json:"title"`
	Description   string `gorm:"column:description" json:"description"`
	CoverPath     string `gorm:"column:cover_path" json:"cover_path,omitempty"`
	ChaptersCount int    `gorm:"column:chapters_count" json:"chapters_count"`
	UpdatedAt     int64  `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
	CreatedAt     int64  `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	IsSynced      bool   `gorm:"column:is_synced" json:"is_synced"`
}

func (Book) TableName() string {
	return "books"
}

// Chapter is an ordered sub-unit of a Book. (BookID, Position) is unique
// within a book; Position is a dense, caller-assigned integer.
type Chapter struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id" json:"-"`
	BookID      string `gorm:"column:book_id" json:"book_id"`
	Position    int    `gorm:"column:position" json:"position"`
	Title       string `gorm:"column:title" json:"title"`
	Description string `gorm:"column:description" json:"description"`
	Date        string `gorm:"column:date" json:"date"`
	WordsCount  int    `gorm:"column:words_count" json:"words_count"`
	IsFavorite  bool   `gorm:"column:is_favorite" json:"is_favorite"`
	Content     string `gorm:"column:content" json:"content"`
	UpdatedAt   int64  `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// CountWords derives a chapter's word count by splitting its content on
// whitespace runs. Empty tokens are excluded, so "one two  three" counts 3.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// DisplayTitle returns the stored title or the placeholder for blank titles.
func (b Book) DisplayTitle() string {
	if strings.TrimSpace(b.Title) == "" {
		return PlaceholderTitle
	}
	return b.Title
}
