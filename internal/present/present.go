// Package present собирает JSON-представления для клиентов.
// Форма аккаунта зависит от роли: у студентов группа и избранное, у преподавателей свои книги.
package present

import (
	"fmt"
	"time"

	"github.com/Spok95/college-library/internal/auth"
	"github.com/Spok95/college-library/internal/blob"
	"github.com/Spok95/college-library/internal/models"
)

// Маркеры вместо ссылки, если файла нет.
const (
	ImageNotFound = "Image Not Found"
	PDFNotFound   = "PDF Not Found"
	DeletedAuthor = "deleted or someone"
)

type Presenter struct {
	urls blob.URLResolver
}

func New(urls blob.URLResolver) *Presenter {
	return &Presenter{urls: urls}
}

// url: ошибки резолвера не валят ответ, вместо ссылки идёт маркер.
func (p *Presenter) url(key, marker string) string {
	if key == "" {
		return marker
	}
	u, err := p.urls.URL(key)
	if err != nil || u == "" {
		return marker
	}
	return u
}

type GenreName struct {
	Name string `json:"name"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Direction struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type AuthorRef struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

type Comment struct {
	ID     int64   `json:"id"`
	Text   string  `json:"text"`
	Book   int64   `json:"book"`
	UserID *int64  `json:"user_id"`
	Name   string  `json:"name"`
	Phone  *string `json:"phone"`
}

type Stat struct {
	User   SimpleAccount `json:"user"`
	IsDown bool          `json:"is_down"`
	IsView bool          `json:"is_view"`
}

type Document struct {
	ID            int64      `json:"id"`
	Author        string     `json:"author"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Pages         *int       `json:"pages"`
	Year          *int       `json:"year"`
	Genre         *int64     `json:"genre"`
	Direction     int64      `json:"direction"`
	Image1        *string    `json:"image1"`
	CreatedAt     time.Time  `json:"created_at"`
	Images        string     `json:"images"`
	Genres        *GenreName `json:"genres"`
	PDF           string     `json:"pdf"`
	DirectionName Direction  `json:"direction_name"`
	Comments      []Comment  `json:"comments"`
	Stats         []Stat     `json:"stats"`
	TotalViews    int        `json:"total_views"`
	TotalDown     int        `json:"total_down"`
	AuthorAccount *AuthorRef `json:"author_account,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (p *Presenter) Direction(d models.Direction) Direction {
	return Direction{ID: d.ID, Name: d.Name, Description: d.Description}
}

func (p *Presenter) Document(d models.DocumentDetail) (Document, error) {
	out := Document{
		ID:            d.Document.ID,
		Author:        d.Document.Author,
		Title:         d.Document.Title,
		Description:   d.Document.Description,
		Pages:         d.Document.Pages,
		Year:          d.Document.Year,
		Genre:         d.Document.GenreID,
		Direction:     d.Document.DirectionID,
		Image1:        optional(d.Document.ImageKey),
		CreatedAt:     d.Document.CreatedAt,
		Images:        p.url(d.Document.ImageKey, ImageNotFound),
		PDF:           p.url(d.Document.PDFKey, PDFNotFound),
		DirectionName: p.Direction(d.Direction),
		Comments:      make([]Comment, 0, len(d.Comments)),
		Stats:         make([]Stat, 0, len(d.Stats)),
		TotalViews:    d.TotalViews(),
		TotalDown:     d.TotalDownloads(),
	}
	if d.Genre != nil {
		out.Genres = &GenreName{Name: d.Genre.Name}
	}
	for _, c := range d.Comments {
		cm := Comment{ID: c.Comment.ID, Text: c.Comment.Text, Book: c.Comment.DocumentID, Name: DeletedAuthor}
		if c.Author != nil {
			id, phone := c.Author.ID, c.Author.PhoneNumber
			cm.UserID, cm.Name, cm.Phone = &id, c.Author.FullName, &phone
		}
		out.Comments = append(out.Comments, cm)
	}
	for _, s := range d.Stats {
		u, err := p.SimpleAccount(&s.Account)
		if err != nil {
			return Document{}, fmt.Errorf("document %d stats: %w", d.Document.ID, err)
		}
		out.Stats = append(out.Stats, Stat{User: u, IsDown: s.Stat.Downloaded, IsView: s.Stat.Viewed})
	}
	if d.Owner != nil {
		out.AuthorAccount = &AuthorRef{Name: d.Owner.FullName, ID: d.Owner.ID}
	}
	return out, nil
}

func (p *Presenter) Documents(ds []models.DocumentDetail) ([]Document, error) {
	out := make([]Document, 0, len(ds))
	for _, d := range ds {
		doc, err := p.Document(d)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// ---- аккаунты

// SimpleAccount: короткая форма для вложения в другие ответы. Ключ group есть только у студентов.
type SimpleAccount struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	PhoneNumber string  `json:"phone_number"`
	UserType    string  `json:"user_type"`
	IsStaff     bool    `json:"is_staff"`
	Group       *string `json:"group,omitempty"`
	Course      *int    `json:"course,omitempty"`
	Direction   *string `json:"direction,omitempty"`
}

func (p *Presenter) SimpleAccount(a *models.Account) (SimpleAccount, error) {
	prof, err := a.Profile()
	if err != nil {
		return SimpleAccount{}, fmt.Errorf("account %d: %w", a.ID, err)
	}
	out := SimpleAccount{
		ID:          a.ID,
		UserID:      a.ID,
		Email:       a.Email,
		FullName:    a.FullName,
		PhoneNumber: a.PhoneNumber,
		UserType:    string(a.Role),
		IsStaff:     a.IsStaff,
	}
	if lp, ok := prof.(models.LearnerProfile); ok {
		g := lp.Group
		out.Group, out.Course, out.Direction = &g.Name, &g.Course, &g.Direction
	}
	return out, nil
}

type FavoriteEntry struct {
	Book Document `json:"book"`
}

type LearnerDetail struct {
	SimpleAccount
	Fav []FavoriteEntry `json:"fav"`
}

type TeacherDetail struct {
	SimpleAccount
	UserBooks []Document `json:"user_books"`
}

// AccountDetail возвращает LearnerDetail или TeacherDetail в зависимости от роли.
func (p *Presenter) AccountDetail(d *models.AccountDetail) (any, error) {
	base, err := p.SimpleAccount(&d.Account)
	if err != nil {
		return nil, err
	}
	prof, _ := d.Account.Profile()
	switch prof.(type) {
	case models.TeacherProfile:
		books, err := p.Documents(d.Authored)
		if err != nil {
			return nil, err
		}
		return TeacherDetail{SimpleAccount: base, UserBooks: books}, nil
	default:
		docs, err := p.Documents(d.Favorites)
		if err != nil {
			return nil, err
		}
		fav := make([]FavoriteEntry, 0, len(docs))
		for _, doc := range docs {
			fav = append(fav, FavoriteEntry{Book: doc})
		}
		return LearnerDetail{SimpleAccount: base, Fav: fav}, nil
	}
}

type LoginPayload struct {
	UserID      int64     `json:"user_id"`
	UserType    string    `json:"user_type"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
	Group       *string   `json:"group,omitempty"`
	Course      *int      `json:"course,omitempty"`
	Direction   *string   `json:"direction,omitempty"`
	Tokens      auth.Pair `json:"tokens"`
}

func (p *Presenter) Login(a *models.Account, tokens auth.Pair) (LoginPayload, error) {
	s, err := p.SimpleAccount(a)
	if err != nil {
		return LoginPayload{}, err
	}
	return LoginPayload{
		UserID:      a.ID,
		UserType:    s.UserType,
		FullName:    a.FullName,
		PhoneNumber: a.PhoneNumber,
		Email:       a.Email,
		Group:       s.Group,
		Course:      s.Course,
		Direction:   s.Direction,
		Tokens:      tokens,
	}, nil
}
