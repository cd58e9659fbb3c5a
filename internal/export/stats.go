package export

import (
	"fmt"
	"time"

	"github.com/Spok95/college-library/internal/models"
)

const (
	SheetDirections = "Направления"
	SheetAccounts   = "Пользователи"
)

// StatsWorkbook: книги по направлениям и по пользователям.
func StatsWorkbook(dirs []models.DirectionStats, accounts []models.AccountStats) (*Workbook, error) {
	dirRows := make([][]any, 0, len(dirs))
	for _, d := range dirs {
		dirRows = append(dirRows, []any{d.ID, d.Name, d.BooksCount})
	}
	accRows := make([][]any, 0, len(accounts))
	for _, a := range accounts {
		accRows = append(accRows, []any{a.ID, a.FullName, a.Email, a.PhoneNumber, a.BooksCount})
	}
	return NewWorkbook([]Sheet{
		{Title: SheetDirections, Header: []string{"ID", "Направление", "Книг"}, Rows: dirRows},
		{Title: SheetAccounts, Header: []string{"ID", "ФИО", "Email", "Телефон", "Книг"}, Rows: accRows},
	})
}

func StatsFilename(now time.Time) string {
	return fmt.Sprintf("library_stats_%s.xlsx", now.Format("2006-01-02"))
}
