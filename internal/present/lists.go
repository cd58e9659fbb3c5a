package present

import (
	"time"

	"github.com/Spok95/college-library/internal/models"
)

type AccountStats struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	BooksCount  int    `json:"books_count"`
}

func (p *Presenter) AccountStats(in []models.AccountStats) []AccountStats {
	out := make([]AccountStats, 0, len(in))
	for _, s := range in {
		out = append(out, AccountStats(s))
	}
	return out
}

type DirectionStats struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	BooksCount int    `json:"books_count"`
}

func (p *Presenter) DirectionStats(in []models.DirectionStats) []DirectionStats {
	out := make([]DirectionStats, 0, len(in))
	for _, s := range in {
		out = append(out, DirectionStats(s))
	}
	return out
}

type Group struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Course    int     `json:"course"`
	Direction string  `json:"direction"`
	Stage     *string `json:"stage"`
}

func (p *Presenter) Groups(in []models.Group) []Group {
	out := make([]Group, 0, len(in))
	for _, g := range in {
		out = append(out, Group(g))
	}
	return out
}

func (p *Presenter) Directions(in []models.Direction) []Direction {
	out := make([]Direction, 0, len(in))
	for _, d := range in {
		out = append(out, p.Direction(d))
	}
	return out
}

func (p *Presenter) Genres(in []models.Genre) []Genre {
	out := make([]Genre, 0, len(in))
	for _, g := range in {
		out = append(out, Genre(g))
	}
	return out
}

type News struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	NewsDate      time.Time  `json:"news_date"`
	Image1        *string    `json:"image1"`
	Images        string     `json:"images"`
	AuthorAccount *AuthorRef `json:"author_account,omitempty"`
}

func (p *Presenter) News(n models.NewsDetail) News {
	out := News{
		ID:          n.News.ID,
		Title:       n.News.Title,
		Description: n.News.Description,
		NewsDate:    n.News.PublishedAt,
		Image1:      optional(n.News.ImageKey),
		Images:      p.url(n.News.ImageKey, ImageNotFound),
	}
	if n.Owner != nil {
		out.AuthorAccount = &AuthorRef{Name: n.Owner.FullName, ID: n.Owner.ID}
	}
	return out
}

func (p *Presenter) NewsList(in []models.NewsDetail) []News {
	out := make([]News, 0, len(in))
	for _, n := range in {
		out = append(out, p.News(n))
	}
	return out
}
