package memstore

import (
	"context"
	"time"

	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/models"
)

func (s *Store) ToggleFavorite(_ context.Context, accountID, documentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := [2]int64{accountID, documentID}
	if _, ok := s.favorites[k]; ok {
		delete(s.favorites, k)
		return false, nil
	}
	if _, ok := s.documents[documentID]; !ok {
		return false, db.ErrNotFound
	}
	s.favorites[k] = s.next()
	return true, nil
}

func (s *Store) AddComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[c.DocumentID]; !ok {
		return db.ErrNotFound
	}
	c.ID = s.next()
	c.CreatedAt = time.Now()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *Store) MarkViewStat(_ context.Context, accountID, documentID int64, flag models.StatFlag) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return false, db.ErrNotFound
	}
	k := [2]int64{accountID, documentID}
	st, exists := s.stats[k]
	if !exists {
		st = &models.ViewStat{ID: s.next(), AccountID: accountID, DocumentID: documentID}
		s.stats[k] = st
	}
	switch flag {
	case models.FlagViewed:
		st.Viewed = true
	case models.FlagDownloaded:
		st.Downloaded = true
	}
	return !exists, nil
}

// ---- для проверок в тестах

func (s *Store) FavoriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.favorites)
}

func (s *Store) ViewStats() []models.ViewStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ViewStat, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, *st)
	}
	return out
}

func (s *Store) DocumentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents)
}
