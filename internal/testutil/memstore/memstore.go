// Package memstore: хранилище в памяти с той же семантикой, что у db.Store
// (уникальность, каскады, атомарные переключатели). Только для тестов.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/college-library/internal/db"
	"github.com/Spok95/college-library/internal/models"
)

type Store struct {
	mu  sync.Mutex
	seq int64

	accounts   map[int64]*models.Account
	groups     map[int64]*models.Group
	genres     map[int64]*models.Genre
	directions map[int64]*models.Direction
	documents  map[int64]*models.Document
	favorites  map[[2]int64]int64
	comments   map[int64]*models.Comment
	stats      map[[2]int64]*models.ViewStat
	news       map[int64]*models.News
}

func New() *Store {
	return &Store{
		accounts:   map[int64]*models.Account{},
		groups:     map[int64]*models.Group{},
		genres:     map[int64]*models.Genre{},
		directions: map[int64]*models.Direction{},
		documents:  map[int64]*models.Document{},
		favorites:  map[[2]int64]int64{},
		comments:   map[int64]*models.Comment{},
		stats:      map[[2]int64]*models.ViewStat{},
		news:       map[int64]*models.News{},
	}
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

func conflict(constraint string) error {
	return &db.ConflictError{Constraint: constraint}
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ---- accounts / groups

func (s *Store) withGroup(a models.Account) models.Account {
	a.Group = nil
	if a.GroupID != nil {
		if g, ok := s.groups[*a.GroupID]; ok {
			cp := *g
			a.Group = &cp
		}
	}
	return a
}

func (s *Store) AccountTaken(_ context.Context, email, phone string) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var e, p bool
	for _, a := range s.accounts {
		e = e || a.Email == email
		p = p || a.PhoneNumber == phone
	}
	return e, p, nil
}

func (s *Store) CreateAccount(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.accounts {
		if x.Email == a.Email {
			return conflict("accounts_email_key")
		}
		if x.PhoneNumber == a.PhoneNumber {
			return conflict("accounts_phone_number_key")
		}
	}
	a.ID = s.next()
	a.CreatedAt = time.Now()
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, ok := s.accounts[a.ID]
	if !ok {
		return db.ErrNotFound
	}
	x.PasswordHash = a.PasswordHash
	x.IsActive = a.IsActive
	x.IsStaff = a.IsStaff
	x.ActivationCode = a.ActivationCode
	return nil
}

func (s *Store) AccountByID(_ context.Context, id int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := s.withGroup(*a)
	return &out, nil
}

func (s *Store) findAccount(match func(*models.Account) bool) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedIDs(s.accounts) {
		if a := s.accounts[id]; match(a) {
			out := s.withGroup(*a)
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) AccountByEmail(_ context.Context, email string) (*models.Account, error) {
	return s.findAccount(func(a *models.Account) bool { return a.Email == email })
}

func (s *Store) AccountByActivationCode(_ context.Context, code string) (*models.Account, error) {
	if strings.TrimSpace(code) == "" {
		return nil, db.ErrNotFound
	}
	return s.findAccount(func(a *models.Account) bool { return a.ActivationCode == code })
}

func (s *Store) ListAccountStats(_ context.Context) ([]models.AccountStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AccountStats
	for _, id := range sortedIDs(s.accounts) {
		a := s.accounts[id]
		st := models.AccountStats{ID: a.ID, FullName: a.FullName, Email: a.Email, PhoneNumber: a.PhoneNumber}
		for _, d := range s.documents {
			if d.OwnerID != nil && *d.OwnerID == a.ID {
				st.BooksCount++
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// DeleteAccount: удаление с каскадами как в postgres; комментарии остаются без автора.
func (s *Store) DeleteAccount(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	for docID, d := range s.documents {
		if d.OwnerID != nil && *d.OwnerID == id {
			s.dropDocument(docID)
		}
	}
	for k := range s.favorites {
		if k[0] == id {
			delete(s.favorites, k)
		}
	}
	for k := range s.stats {
		if k[0] == id {
			delete(s.stats, k)
		}
	}
	for _, c := range s.comments {
		if c.AccountID != nil && *c.AccountID == id {
			c.AccountID = nil
		}
	}
	for nid, n := range s.news {
		if n.OwnerID != nil && *n.OwnerID == id {
			delete(s.news, nid)
		}
	}
}

func (s *Store) GroupByID(_ context.Context, id int64) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *Store) ListGroups(_ context.Context) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Group
	for _, id := range sortedIDs(s.groups) {
		out = append(out, *s.groups[id])
	}
	return out, nil
}

func (s *Store) CreateGroup(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.Direction == "" {
		g.Direction = models.DefaultGroupDirection
	}
	g.ID = s.next()
	cp := *g
	s.groups[g.ID] = &cp
	return nil
}

func (s *Store) AccountsByIDs(_ context.Context, ids []int64) (map[int64]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountsByIDs(ids), nil
}

func (s *Store) accountsByIDs(ids []int64) map[int64]models.Account {
	out := make(map[int64]models.Account, len(ids))
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			out[id] = s.withGroup(*a)
		}
	}
	return out
}
