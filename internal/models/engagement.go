package models

import "time"

type Favorite struct {
	ID         int64 `db:"id"`
	AccountID  int64 `db:"account_id"`
	DocumentID int64 `db:"document_id"`
}

// Comment: AccountID становится nil, если автора удалили.
type Comment struct {
	ID         int64     `db:"id"`
	AccountID  *int64    `db:"account_id"`
	DocumentID int64     `db:"document_id"`
	Text       string    `db:"text"`
	CreatedAt  time.Time `db:"created_at"`
}

type CommentWithAuthor struct {
	Comment Comment
	Author  *Account
}

// ViewStat: пара флагов на (аккаунт, документ), не счётчик.
type ViewStat struct {
	ID         int64 `db:"id"`
	AccountID  int64 `db:"account_id"`
	DocumentID int64 `db:"document_id"`
	Viewed     bool  `db:"viewed"`
	Downloaded bool  `db:"downloaded"`
}

type ViewStatWithAccount struct {
	Stat    ViewStat
	Account Account
}

// StatFlag: какой флаг ставит запись просмотра.
type StatFlag int

const (
	FlagViewed StatFlag = iota
	FlagDownloaded
)
