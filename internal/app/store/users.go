package store

import (
	"context"
	"fmt"

	"teamchat/internal/app/user"
)

const userColumns = `user_uuid::text, name, username,
	COALESCE(employee_id, ''), COALESCE(position, ''), COALESCE(department, ''),
	COALESCE(email, ''), is_approved`

func scanUser(row interface{ Scan(...any) error }) (user.User, error) {
	var u user.User
	err := row.Scan(&u.UUID, &u.Name, &u.Username,
		&u.EmployeeID, &u.Position, &u.Department,
		&u.Email, &u.IsApproved)
	return u, err
}

// GetUserByUUID fetches one directory row.
func (s *Store) GetUserByUUID(ctx context.Context, userUUID string) (user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_uuid = $1::uuid`,
		userUUID)

	u, err := scanUser(row)
	if err != nil {
		return user.User{}, fmt.Errorf("get user %s: %w", userUUID, err)
	}
	return u, nil
}

// ListApprovedUsers returns every approved directory row, ordered by name.
func (s *Store) ListApprovedUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_approved ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list approved users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUsersByUUIDs resolves a set of identities to directory rows. Unknown
// identities are silently absent from the result.
func (s *Store) ListUsersByUUIDs(ctx context.Context, userUUIDs []string) ([]user.User, error) {
	if len(userUUIDs) == 0 {
		return []user.User{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_uuid = ANY($1::uuid[]) ORDER BY name`,
		userUUIDs)
	if err != nil {
		return nil, fmt.Errorf("list users by uuids: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0, len(userUUIDs))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
