package user

import (
	"database/sql"
	"errors"
)

// PostgresRepository implements Repository over database/sql with the pgx
// stdlib driver.
type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	findAllQuery = `
		SELECT id, first_name, last_name, email, date_of_birth, address, phone_number
		FROM users
		ORDER BY id
	`
	findByIDQuery = `
		SELECT id, first_name, last_name, email, date_of_birth, address, phone_number
		FROM users
		WHERE id = $1
	`
	existsByEmailQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	findByBirthDateQuery = `
		SELECT id, first_name, last_name, email, date_of_birth, address, phone_number
		FROM users
		WHERE date_of_birth BETWEEN $1 AND $2
		ORDER BY id
	`
	insertUserQuery = `
		INSERT INTO users (first_name, last_name, email, date_of_birth, address, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	upsertUserQuery = `
		INSERT INTO users (id, first_name, last_name, email, date_of_birth, address, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			date_of_birth = EXCLUDED.date_of_birth,
			address = EXCLUDED.address,
			phone_number = EXCLUDED.phone_number
	`
	deleteUserQuery = `DELETE FROM users WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindAll() ([]User, error) {
	return r.queryUsers(findAllQuery)
}

func (r *PostgresRepository) FindByID(id int64) (User, error) {
	row := r.db.QueryRow(findByIDQuery, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNoUser
		}
		return User{}, &StoreError{Err: err}
	}

	return u, nil
}

func (r *PostgresRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(existsByEmailQuery, email).Scan(&exists); err != nil {
		return false, &StoreError{Err: err}
	}

	return exists, nil
}

func (r *PostgresRepository) FindByBirthDateBetween(from, to Date) ([]User, error) {
	return r.queryUsers(findByBirthDateQuery, from, to)
}

func (r *PostgresRepository) Save(u User) (User, error) {
	if u.ID == 0 {
		var id int64
		err := r.db.QueryRow(
			insertUserQuery,
			u.FirstName,
			u.LastName,
			u.Email,
			u.DateOfBirth,
			nullable(u.Address),
			nullable(u.PhoneNumber),
		).Scan(&id)
		if err != nil {
			return User{}, &StoreError{Err: err}
		}

		u.ID = id
		return u, nil
	}

	_, err := r.db.Exec(
		upsertUserQuery,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.DateOfBirth,
		nullable(u.Address),
		nullable(u.PhoneNumber),
	)
	if err != nil {
		return User{}, &StoreError{Err: err}
	}

	return u, nil
}

func (r *PostgresRepository) DeleteByID(id int64) error {
	result, err := r.db.Exec(deleteUserQuery, id)
	if err != nil {
		return &StoreError{Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StoreError{Err: err}
	}
	if affected == 0 {
		return ErrNoUser
	}

	return nil
}

func (r *PostgresRepository) queryUsers(query string, args ...any) ([]User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, &StoreError{Err: err}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Err: err}
	}

	return users, nil
}

func scanUser(scanner rowScanner) (User, error) {
	var u User
	var address sql.NullString
	var phone sql.NullString

	if err := scanner.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.DateOfBirth,
		&address,
		&phone,
	); err != nil {
		return User{}, err
	}

	if address.Valid {
		u.Address = address.String
	}
	if phone.Valid {
		u.PhoneNumber = phone.String
	}

	return u, nil
}

// nullable maps an empty optional field to a SQL NULL instead of storing an
// empty string.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
