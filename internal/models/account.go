package models

import (
	"errors"
	"time"
)

type Role string

const (
	Student        Role = "student"
	Representative Role = "representative"
	Teacher        Role = "teacher"
)

func (r Role) Valid() bool {
	switch r {
	case Student, Representative, Teacher:
		return true
	}
	return false
}

// ErrMissingGroup: у студента/старосты нет группы. Это порча данных, а не норма.
var ErrMissingGroup = errors.New("models: learner account has no group")

// DefaultGroupDirection: направление группы, если не указано.
const DefaultGroupDirection = "КОМТЕХНО"

type Group struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	Course    int     `db:"course"`
	Direction string  `db:"direction"`
	Stage     *string `db:"stage"`
}

type Account struct {
	ID             int64     `db:"id"`
	Email          string    `db:"email"`
	PhoneNumber    string    `db:"phone_number"`
	FullName       string    `db:"full_name"`
	Role           Role      `db:"role"`
	GroupID        *int64    `db:"group_id"`
	Group          *Group    `db:"-"`
	IsStaff        bool      `db:"is_staff"`
	IsActive       bool      `db:"is_active"`
	ActivationCode string    `db:"activation_code"`
	PasswordHash   string    `db:"password_hash"`
	CreatedAt      time.Time `db:"created_at"`
}

// Profile: ролевая часть аккаунта.
// LearnerProfile для student/representative, TeacherProfile для teacher.
type Profile interface {
	isProfile()
}

type LearnerProfile struct {
	Role  Role
	Group Group
}

type TeacherProfile struct{}

func (LearnerProfile) isProfile() {}
func (TeacherProfile) isProfile() {}

func (a *Account) Profile() (Profile, error) {
	if a.Role == Teacher {
		return TeacherProfile{}, nil
	}
	if a.Group == nil {
		return nil, ErrMissingGroup
	}
	return LearnerProfile{Role: a.Role, Group: *a.Group}, nil
}

func (a *Account) IsTeacher() bool { return a.Role == Teacher }

// AccountStats: строка списка аккаунтов с числом загруженных книг.
type AccountStats struct {
	ID          int64
	FullName    string
	Email       string
	PhoneNumber string
	BooksCount  int
}

// AccountDetail: аккаунт вместе с избранным (ученики) или своими книгами (преподаватели).
type AccountDetail struct {
	Account   Account
	Favorites []DocumentDetail
	Authored  []DocumentDetail
}
