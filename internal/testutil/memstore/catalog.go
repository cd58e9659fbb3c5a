package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/models"
)

func (s *Store) DocumentIDs(_ context.Context, search string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search = strings.ToLower(strings.TrimSpace(search))
	var out []int64
	for _, id := range sortedIDs(s.documents) {
		if search == "" || strings.Contains(strings.ToLower(s.documents[id].Title), search) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) DocumentIDsByOwner(_ context.Context, ownerID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for _, id := range sortedIDs(s.documents) {
		if o := s.documents[id].OwnerID; o != nil && *o == ownerID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) FavoriteDocumentIDs(_ context.Context, accountID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type fav struct{ id, doc int64 }
	var favs []fav
	for k, id := range s.favorites {
		if k[0] == accountID {
			favs = append(favs, fav{id, k[1]})
		}
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].id < favs[j].id })
	out := make([]int64, 0, len(favs))
	for _, f := range favs {
		out = append(out, f.doc)
	}
	return out, nil
}

func (s *Store) DistinctTitles(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, id := range sortedIDs(s.documents) {
		t := s.documents[id].Title
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) DocumentIDsByTitles(_ context.Context, titles []string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := map[string]bool{}
	for _, t := range titles {
		set[t] = true
	}
	var out []int64
	for _, id := range sortedIDs(s.documents) {
		if set[s.documents[id].Title] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) DocumentByID(_ context.Context, id int64) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Store) CreateDocument(_ context.Context, d *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.directions[d.DirectionID]; !ok {
		return db.ErrNotFound
	}
	d.ID = s.next()
	d.CreatedAt = time.Now()
	cp := *d
	s.documents[d.ID] = &cp
	return nil
}

func (s *Store) dropDocument(id int64) {
	delete(s.documents, id)
	for k := range s.favorites {
		if k[1] == id {
			delete(s.favorites, k)
		}
	}
	for k := range s.stats {
		if k[1] == id {
			delete(s.stats, k)
		}
	}
	for cid, c := range s.comments {
		if c.DocumentID == id {
			delete(s.comments, cid)
		}
	}
}

func (s *Store) DeleteDocument(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return db.ErrNotFound
	}
	s.dropDocument(id)
	return nil
}

func (s *Store) DeleteDocuments(_ context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.documents[id]; ok {
			s.dropDocument(id)
			n++
		}
	}
	return n, nil
}

func (s *Store) DocumentDetails(_ context.Context, ids []int64) ([]models.DocumentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DocumentDetail, 0, len(ids))
	for _, id := range ids {
		d, ok := s.documents[id]
		if !ok {
			continue
		}
		dd := models.DocumentDetail{Document: *d, Direction: *s.directions[d.DirectionID]}
		if d.GenreID != nil {
			if g, ok := s.genres[*d.GenreID]; ok {
				cp := *g
				dd.Genre = &cp
			}
		}
		if d.OwnerID != nil {
			if a, ok := s.accounts[*d.OwnerID]; ok {
				cp := s.withGroup(*a)
				dd.Owner = &cp
			}
		}
		for _, cid := range sortedIDs(s.comments) {
			c := s.comments[cid]
			if c.DocumentID != id {
				continue
			}
			cw := models.CommentWithAuthor{Comment: *c}
			if c.AccountID != nil {
				if a, ok := s.accounts[*c.AccountID]; ok {
					cp := s.withGroup(*a)
					cw.Author = &cp
				}
			}
			dd.Comments = append(dd.Comments, cw)
		}
		var stats []*models.ViewStat
		for k, st := range s.stats {
			if k[1] == id {
				stats = append(stats, st)
			}
		}
		sort.Slice(stats, func(i, j int) bool { return stats[i].ID < stats[j].ID })
		for _, st := range stats {
			if a, ok := s.accounts[st.AccountID]; ok {
				dd.Stats = append(dd.Stats, models.ViewStatWithAccount{Stat: *st, Account: s.withGroup(*a)})
			}
		}
		out = append(out, dd)
	}
	return out, nil
}

func (s *Store) GetOrCreateGenre(_ context.Context, name string) (*models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.genres {
		if g.Name == name {
			cp := *g
			return &cp, nil
		}
	}
	g := &models.Genre{ID: s.next(), Name: name}
	s.genres[g.ID] = g
	cp := *g
	return &cp, nil
}

func (s *Store) ListGenres(_ context.Context) ([]models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Genre
	for _, id := range sortedIDs(s.genres) {
		out = append(out, *s.genres[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListDirections(_ context.Context) ([]models.Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Direction
	for _, id := range sortedIDs(s.directions) {
		out = append(out, *s.directions[id])
	}
	return out, nil
}

func (s *Store) DirectionByID(_ context.Context, id int64) (*models.Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.directions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Store) DirectionByName(_ context.Context, name string) (*models.Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.directions {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) CreateDirection(_ context.Context, d *models.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.directions {
		if x.Name == d.Name {
			return conflict("directions_name_key")
		}
	}
	d.ID = s.next()
	cp := *d
	s.directions[d.ID] = &cp
	return nil
}

func (s *Store) UpdateDirection(_ context.Context, d *models.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.directions[d.ID]; !ok {
		return db.ErrNotFound
	}
	for _, x := range s.directions {
		if x.Name == d.Name && x.ID != d.ID {
			return conflict("directions_name_key")
		}
	}
	cp := *d
	s.directions[d.ID] = &cp
	return nil
}

func (s *Store) DeleteDirection(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.directions[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.directions, id)
	for docID, d := range s.documents {
		if d.DirectionID == id {
			s.dropDocument(docID)
		}
	}
	return nil
}

func (s *Store) DirectionStats(_ context.Context) ([]models.DirectionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DirectionStats
	for _, id := range sortedIDs(s.directions) {
		st := models.DirectionStats{ID: id, Name: s.directions[id].Name}
		for _, d := range s.documents {
			if d.DirectionID == id {
				st.BooksCount++
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// ---- news

func (s *Store) newsDetail(n *models.News) models.NewsDetail {
	nd := models.NewsDetail{News: *n}
	if n.OwnerID != nil {
		if a, ok := s.accounts[*n.OwnerID]; ok {
			cp := s.withGroup(*a)
			nd.Owner = &cp
		}
	}
	return nd
}

func (s *Store) ListNews(_ context.Context) ([]models.NewsDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.NewsDetail
	for _, id := range sortedIDs(s.news) {
		out = append(out, s.newsDetail(s.news[id]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].News.PublishedAt.Equal(out[j].News.PublishedAt) {
			return out[i].News.PublishedAt.After(out[j].News.PublishedAt)
		}
		return out[i].News.ID > out[j].News.ID
	})
	return out, nil
}

func (s *Store) NewsByID(_ context.Context, id int64) (*models.NewsDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.news[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	nd := s.newsDetail(n)
	return &nd, nil
}

func (s *Store) CreateNews(_ context.Context, n *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.next()
	if n.PublishedAt.IsZero() {
		n.PublishedAt = time.Now()
	}
	cp := *n
	s.news[n.ID] = &cp
	return nil
}

func (s *Store) UpdateNews(_ context.Context, n *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, ok := s.news[n.ID]
	if !ok {
		return db.ErrNotFound
	}
	x.Title, x.Description, x.ImageKey = n.Title, n.Description, n.ImageKey
	return nil
}

func (s *Store) DeleteNews(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.news[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.news, id)
	return nil
}
