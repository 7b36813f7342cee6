package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"campuscore/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id int) error
	List(limit, offset int) ([]*models.User, error)
	GetCount() (int, error)
	GetCountByRole(role string) (int, error)

	// refresh helpers
	UpdateRefresh(userID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int) error
	GetByRefreshToken(token string) (*models.User, error)

	// verification
	MarkEmailVerified(userID int) error
	UpdatePassword(userID int, passwordHash string) error
	UpdateProfilePicture(userID int, path string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, username, email, name, role,
	contact, date_of_birth, address, nationality, government_id,
	email_verified, COALESCE(profile_picture,''), password_hash,
	refresh_token, refresh_expires_at, refresh_revoked
`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		contact sql.NullString
		dob     sql.NullTime
		addr    sql.NullString
		nat     sql.NullString
		govID   sql.NullString
		rt      sql.NullString
		rte     sql.NullTime
		rr      sql.NullBool
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Name, &u.Role,
		&contact, &dob, &addr, &nat, &govID,
		&u.EmailVerified, &u.ProfilePicture, &u.PasswordHash,
		&rt, &rte, &rr,
	)
	if err != nil {
		return nil, err
	}
	if contact.Valid {
		u.Contact = contact.String
	}
	if dob.Valid {
		t := dob.Time
		u.DateOfBirth = &t
	}
	if addr.Valid {
		u.Address = addr.String
	}
	if nat.Valid {
		u.Nationality = nat.String
	}
	if govID.Valid {
		u.GovernmentID = govID.String
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			username, email, name, role,
			contact, date_of_birth, address, nationality, government_id,
			email_verified, profile_picture, password_hash,
			refresh_token, refresh_expires_at, refresh_revoked
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NULL,NULL,FALSE)
		RETURNING id
	`
	return r.DB.QueryRow(q,
		user.Username,
		user.Email,
		user.Name,
		user.Role,
		nullStr(user.Contact),
		user.DateOfBirth,
		nullStr(user.Address),
		nullStr(user.Nationality),
		nullStr(user.GovernmentID),
		user.EmailVerified,
		nullStr(user.ProfilePicture),
		user.PasswordHash,
	).Scan(&user.ID)
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.DB.QueryRow(q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) Update(user *models.User) error {
	const q = `
		UPDATE users
		SET
			username=$1,
			email=$2,
			name=$3,
			role=$4,
			contact=$5,
			date_of_birth=$6,
			address=$7,
			nationality=$8,
			government_id=$9,
			email_verified=$10,
			profile_picture=$11
		WHERE id=$12
	`
	_, err := r.DB.Exec(q,
		user.Username,
		user.Email,
		user.Name,
		user.Role,
		nullStr(user.Contact),
		user.DateOfBirth,
		nullStr(user.Address),
		nullStr(user.Nationality),
		nullStr(user.GovernmentID),
		user.EmailVerified,
		nullStr(user.ProfilePicture),
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(id int) error {
	if _, err := r.DB.Exec(`DELETE FROM users WHERE id=$1`, id); err != nil {
		return fmt.Errorf("user delete: %w", err)
	}
	return nil
}

func (r *userRepository) List(limit, offset int) ([]*models.User, error) {
	const q = `
		SELECT
			id, username, email, name, role,
			contact, date_of_birth, address, nationality, government_id,
			email_verified, COALESCE(profile_picture,'')
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u := &models.User{}
		var (
			contact sql.NullString
			dob     sql.NullTime
			addr    sql.NullString
			nat     sql.NullString
			govID   sql.NullString
		)
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.Name, &u.Role,
			&contact, &dob, &addr, &nat, &govID,
			&u.EmailVerified, &u.ProfilePicture,
		); err != nil {
			return nil, fmt.Errorf("user list scan: %w", err)
		}
		if contact.Valid {
			u.Contact = contact.String
		}
		if dob.Valid {
			t := dob.Time
			u.DateOfBirth = &t
		}
		if addr.Valid {
			u.Address = addr.String
		}
		if nat.Valid {
			u.Nationality = nat.String
		}
		if govID.Valid {
			u.GovernmentID = govID.String
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *userRepository) GetCount() (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&c)
	return c, err
}

func (r *userRepository) GetCountByRole(role string) (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&c)
	return c, err
}

// ===== refresh helpers =====

func (r *userRepository) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	_, err := r.DB.Exec(q, token, expiresAt, userID)
	return err
}

func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRow(q, newToken, newExpiresAt, oldToken))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user rotate refresh: %w", err)
	}
	return u, nil
}

func (r *userRepository) ClearRefresh(userID int) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE
		WHERE id=$1
	`, userID)
	return err
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	u, err := scanUser(r.DB.QueryRow(q, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get by refresh token: %w", err)
	}
	return u, nil
}

// ===== verification helpers =====

func (r *userRepository) MarkEmailVerified(userID int) error {
	_, err := r.DB.Exec(`UPDATE users SET email_verified=TRUE WHERE id=$1`, userID)
	return err
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID)
	return err
}

func (r *userRepository) UpdateProfilePicture(userID int, path string) error {
	_, err := r.DB.Exec(`UPDATE users SET profile_picture=$1 WHERE id=$2`, path, userID)
	return err
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
