package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avillega/trueque/internal/model"
)

// CreateMember creates a member profile for a user account.
func CreateMember(ctx context.Context, q Querier, userID int64, name, gender string, birthDate *time.Time, city, country, bio string) (*model.Member, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO members (user_id, name, gender, birth_date, city, country, bio)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, name, gender, birthDate, city, country, bio,
	)
	if err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting member id: %w", err)
	}

	return GetMember(ctx, q, id)
}

// GetMember returns a member by ID.
func GetMember(ctx context.Context, q Querier, id int64) (*model.Member, error) {
	return scanMember(q.QueryRowContext(ctx,
		`SELECT id, user_id, name, gender, birth_date, city, country, bio, created_at, updated_at
		 FROM members WHERE id = ?`, id,
	))
}

// GetMemberByUserID resolves an authenticated user to their member profile.
func GetMemberByUserID(ctx context.Context, q Querier, userID int64) (*model.Member, error) {
	return scanMember(q.QueryRowContext(ctx,
		`SELECT id, user_id, name, gender, birth_date, city, country, bio, created_at, updated_at
		 FROM members WHERE user_id = ?`, userID,
	))
}

// ListMembers returns all member profiles, optionally excluding one member.
func ListMembers(ctx context.Context, q Querier, excludeMemberID int64) ([]model.Member, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, user_id, name, gender, birth_date, city, country, bio, created_at, updated_at
		 FROM members WHERE id <> ? ORDER BY name`, excludeMemberID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		var gender, city, country, bio sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &gender, &m.BirthDate,
			&city, &country, &bio, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		m.Gender = gender.String
		m.City = city.String
		m.Country = country.String
		m.Bio = bio.String
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateMember updates a member's profile attributes.
func UpdateMember(ctx context.Context, q Querier, id int64, name, gender, city, country, bio string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE members SET name = ?, gender = ?, city = ?, country = ?, bio = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, gender, city, country, bio, id,
	)
	if err != nil {
		return fmt.Errorf("updating member: %w", err)
	}
	return nil
}

func scanMember(row *sql.Row) (*model.Member, error) {
	m := &model.Member{}
	var gender, city, country, bio sql.NullString
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &gender, &m.BirthDate,
		&city, &country, &bio, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}
	m.Gender = gender.String
	m.City = city.String
	m.Country = country.String
	m.Bio = bio.String
	return m, nil
}
