package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/Spok95/college-library/internal/ctxutil"
	"github.com/Spok95/college-library/internal/models"
)

const accountSelect = `
	SELECT a.id, a.email, a.phone_number, a.full_name, a.role, a.group_id,
	       a.is_staff, a.is_active, a.activation_code, a.password_hash, a.created_at,
	       g.id, g.name, g.course, g.direction, g.stage
	FROM accounts a
	LEFT JOIN groups g ON g.id = a.group_id
`

func scanAccount(row scanner) (*models.Account, error) {
	var (
		a       models.Account
		gID     sql.NullInt64
		gName   sql.NullString
		gCourse sql.NullInt32
		gDir    sql.NullString
		gStage  sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Email, &a.PhoneNumber, &a.FullName, &a.Role, &a.GroupID,
		&a.IsStaff, &a.IsActive, &a.ActivationCode, &a.PasswordHash, &a.CreatedAt,
		&gID, &gName, &gCourse, &gDir, &gStage); err != nil {
		return nil, err
	}
	if gID.Valid {
		g := &models.Group{ID: gID.Int64, Name: gName.String, Course: int(gCourse.Int32), Direction: gDir.String}
		if gStage.Valid {
			st := gStage.String
			g.Stage = &st
		}
		a.Group = g
	}
	return &a, nil
}

func (s *Store) accountBy(ctx context.Context, where string, arg any) (*models.Account, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	a, err := scanAccount(s.db.QueryRowContext(ctx, accountSelect+where, arg))
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *Store) AccountByID(ctx context.Context, id int64) (*models.Account, error) {
	return s.accountBy(ctx, `WHERE a.id = $1`, id)
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.accountBy(ctx, `WHERE a.email = $1`, email)
}

// AccountByActivationCode: пустой код никогда не совпадает.
func (s *Store) AccountByActivationCode(ctx context.Context, code string) (*models.Account, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrNotFound
	}
	return s.accountBy(ctx, `WHERE a.activation_code = $1`, code)
}

// AccountTaken: заняты ли email и телефон.
func (s *Store) AccountTaken(ctx context.Context, email, phone string) (emailTaken, phoneTaken bool, err error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1),
		       EXISTS (SELECT 1 FROM accounts WHERE phone_number = $2)
	`, email, phone).Scan(&emailTaken, &phoneTaken)
	return emailTaken, phoneTaken, err
}

func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (email, phone_number, full_name, role, group_id,
		                      is_staff, is_active, activation_code, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, a.Email, a.PhoneNumber, a.FullName, string(a.Role), a.GroupID,
		a.IsStaff, a.IsActive, a.ActivationCode, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
	return mapErr(err)
}

// UpdateAccount сохраняет изменяемые поля: пароль, флаги и код активации.
func (s *Store) UpdateAccount(ctx context.Context, a *models.Account) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $1, is_active = $2, is_staff = $3, activation_code = $4
		WHERE id = $5
	`, a.PasswordHash, a.IsActive, a.IsStaff, a.ActivationCode, a.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AccountsByIDs: аккаунты с группами по id. Отсутствующие просто не попадают в map.
func (s *Store) AccountsByIDs(ctx context.Context, ids []int64) (map[int64]models.Account, error) {
	out := make(map[int64]models.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, accountSelect+`WHERE a.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out[a.ID] = *a
	}
	return out, rows.Err()
}

func (s *Store) ListAccountStats(ctx context.Context) ([]models.AccountStats, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.full_name, a.email, a.phone_number, COUNT(d.id)
		FROM accounts a
		LEFT JOIN documents d ON d.owner_id = a.id
		GROUP BY a.id
		ORDER BY a.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AccountStats
	for rows.Next() {
		var st models.AccountStats
		if err := rows.Scan(&st.ID, &st.FullName, &st.Email, &st.PhoneNumber, &st.BooksCount); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) GroupByID(ctx context.Context, id int64) (*models.Group, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var g models.Group
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, course, direction, stage FROM groups WHERE id = $1
	`, id).Scan(&g.ID, &g.Name, &g.Course, &g.Direction, &g.Stage)
	if err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, course, direction, stage FROM groups ORDER BY course, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Course, &g.Direction, &g.Stage); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if g.Direction == "" {
		g.Direction = models.DefaultGroupDirection
	}
	return mapErr(s.db.QueryRowContext(ctx, `
		INSERT INTO groups (name, course, direction, stage) VALUES ($1, $2, $3, $4)
		RETURNING id
	`, g.Name, g.Course, g.Direction, g.Stage).Scan(&g.ID))
}
