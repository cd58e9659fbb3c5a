package models

import "time"

type Genre struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Direction struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
}

type DirectionStats struct {
	ID         int64
	Name       string
	BooksCount int
}

// Document: книга каталога. Пустые PDFKey/ImageKey значат «файла нет».
type Document struct {
	ID          int64     `db:"id"`
	Author      string    `db:"author"`
	OwnerID     *int64    `db:"owner_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	GenreID     *int64    `db:"genre_id"`
	DirectionID int64     `db:"direction_id"`
	Pages       *int      `db:"pages"`
	Year        *int      `db:"year"`
	PDFKey      string    `db:"pdf_key"`
	ImageKey    string    `db:"image_key"`
	CreatedAt   time.Time `db:"created_at"`
}

// DocumentDetail: документ со всем, что нужно для полного представления.
type DocumentDetail struct {
	Document  Document
	Genre     *Genre
	Direction Direction
	Owner     *Account
	Comments  []CommentWithAuthor
	Stats     []ViewStatWithAccount
}

func (d DocumentDetail) TotalViews() int {
	n := 0
	for _, s := range d.Stats {
		if s.Stat.Viewed {
			n++
		}
	}
	return n
}

func (d DocumentDetail) TotalDownloads() int {
	n := 0
	for _, s := range d.Stats {
		if s.Stat.Downloaded {
			n++
		}
	}
	return n
}

type News struct {
	ID          int64     `db:"id"`
	OwnerID     *int64    `db:"owner_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	PublishedAt time.Time `db:"published_at"`
	ImageKey    string    `db:"image_key"`
}

type NewsDetail struct {
	News  News
	Owner *Account
}
