package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type AccountRow struct {
	Name         string
	PasswordHash string
	AccessLevel  int
	Banned       bool
	CreatedAt    time.Time
	LastActive   *time.Time
}

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Load returns the account row for name, or nil if no account exists.
func (r *AccountRepo) Load(name string) (*AccountRow, error) {
	row := &AccountRow{}
	var lastActive sql.NullInt64
	var createdAt int64
	err := r.db.QueryRow(
		`SELECT name, password_hash, access_level, banned, created_at, last_active
		 FROM accounts WHERE name = ?`, name,
	).Scan(&row.Name, &row.PasswordHash, &row.AccessLevel, &row.Banned, &createdAt, &lastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", name, err)
	}
	row.CreatedAt = time.Unix(createdAt, 0)
	if lastActive.Valid {
		t := time.Unix(lastActive.Int64, 0)
		row.LastActive = &t
	}
	return row, nil
}

// Create hashes rawPassword with bcrypt and inserts a new account row.
func (r *AccountRepo) Create(name, rawPassword string) (*AccountRow, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now()
	row := &AccountRow{
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		LastActive:   &now,
	}
	_, err = r.db.Exec(
		`INSERT INTO accounts (name, password_hash, created_at, last_active) VALUES (?, ?, ?, ?)`,
		row.Name, row.PasswordHash, now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("create account %s: %w", name, err)
	}
	return row, nil
}

// ValidatePassword reports whether rawPassword matches the stored hash.
func (r *AccountRepo) ValidatePassword(hash, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword)) == nil
}

func (r *AccountRepo) UpdateLastActive(name string) error {
	_, err := r.db.Exec(`UPDATE accounts SET last_active = ? WHERE name = ?`, time.Now().Unix(), name)
	if err != nil {
		return fmt.Errorf("update last active for %s: %w", name, err)
	}
	return nil
}
