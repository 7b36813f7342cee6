package repositories

import (
	"database/sql"
	"fmt"

	"campuscore/internal/models"
)

type ProfileRepository interface {
	Create(p *models.Profile) error
	GetByID(id int64) (*models.Profile, error)
	GetByUserID(userID int) (*models.Profile, error)
	Update(p *models.Profile) error
	Delete(id int64) error
	ListByRole(role string, search string, limit, offset int) ([]*models.Profile, error)
	CountByRole(role string) (int, error)
	CountAdmittedSince(role string, intake string) (int, error)
	SetDocumentPath(id int64, column, path string) error
}

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{DB: db}
}

const profileColumns = `
	id, user_id, role,
	COALESCE(level,''), COALESCE(program,''), COALESCE(intake,''), date_of_admission,
	COALESCE(tuition_fee,0), COALESCE(balance,0), COALESCE(amount_due,0),
	COALESCE(payment_method,''), COALESCE(payment_status,''), payment_date, COALESCE(remarks,''),
	COALESCE(subject_taught,''), COALESCE(department,''), date_of_employment, COALESCE(college_degree,''),
	COALESCE(profile_image,''), COALESCE(admission_letter,'')
`

func scanProfile(s interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	p := &models.Profile{}
	var (
		doa sql.NullTime
		pd  sql.NullTime
		doe sql.NullTime
	)
	err := s.Scan(
		&p.ID, &p.UserID, &p.Role,
		&p.Level, &p.Program, &p.Intake, &doa,
		&p.TuitionFee, &p.Balance, &p.AmountDue,
		&p.PaymentMethod, &p.PaymentStatus, &pd, &p.Remarks,
		&p.SubjectTaught, &p.Department, &doe, &p.CollegeDegree,
		&p.ProfileImage, &p.AdmissionLetter,
	)
	if err != nil {
		return nil, err
	}
	if doa.Valid {
		t := doa.Time
		p.DateOfAdmission = &t
	}
	if pd.Valid {
		t := pd.Time
		p.PaymentDate = &t
	}
	if doe.Valid {
		t := doe.Time
		p.DateOfEmployment = &t
	}
	return p, nil
}

func (r *profileRepository) Create(p *models.Profile) error {
	const q = `
		INSERT INTO profiles (
			user_id, role,
			level, program, intake, date_of_admission,
			tuition_fee, balance, amount_due,
			payment_method, payment_status, payment_date, remarks,
			subject_taught, department, date_of_employment, college_degree,
			profile_image, admission_letter
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id
	`
	return r.DB.QueryRow(q,
		p.UserID, p.Role,
		nullStr(p.Level), nullStr(p.Program), nullStr(p.Intake), p.DateOfAdmission,
		p.TuitionFee, p.Balance, p.AmountDue,
		nullStr(p.PaymentMethod), nullStr(p.PaymentStatus), p.PaymentDate, nullStr(p.Remarks),
		nullStr(p.SubjectTaught), nullStr(p.Department), p.DateOfEmployment, nullStr(p.CollegeDegree),
		nullStr(p.ProfileImage), nullStr(p.AdmissionLetter),
	).Scan(&p.ID)
}

func (r *profileRepository) GetByID(id int64) (*models.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile get by id: %w", err)
	}
	return p, nil
}

func (r *profileRepository) GetByUserID(userID int) (*models.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	p, err := scanProfile(r.DB.QueryRow(q, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile get by user: %w", err)
	}
	return p, nil
}

func (r *profileRepository) Update(p *models.Profile) error {
	const q = `
		UPDATE profiles
		SET
			level=$1, program=$2, intake=$3, date_of_admission=$4,
			tuition_fee=$5, balance=$6, amount_due=$7,
			payment_method=$8, payment_status=$9, payment_date=$10, remarks=$11,
			subject_taught=$12, department=$13, date_of_employment=$14, college_degree=$15,
			profile_image=$16, admission_letter=$17
		WHERE id=$18
	`
	_, err := r.DB.Exec(q,
		nullStr(p.Level), nullStr(p.Program), nullStr(p.Intake), p.DateOfAdmission,
		p.TuitionFee, p.Balance, p.AmountDue,
		nullStr(p.PaymentMethod), nullStr(p.PaymentStatus), p.PaymentDate, nullStr(p.Remarks),
		nullStr(p.SubjectTaught), nullStr(p.Department), p.DateOfEmployment, nullStr(p.CollegeDegree),
		nullStr(p.ProfileImage), nullStr(p.AdmissionLetter),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("profile update: %w", err)
	}
	return nil
}

func (r *profileRepository) Delete(id int64) error {
	if _, err := r.DB.Exec(`DELETE FROM profiles WHERE id=$1`, id); err != nil {
		return fmt.Errorf("profile delete: %w", err)
	}
	return nil
}

// ListByRole — role-scoped listing; search matches program, level, subject or
// department, the way the old per-role list endpoints filtered.
func (r *profileRepository) ListByRole(role string, search string, limit, offset int) ([]*models.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1`
	args := []interface{}{role}
	if search != "" {
		q += ` AND (program ILIKE $2 OR level ILIKE $2 OR subject_taught ILIKE $2 OR department ILIKE $2)`
		args = append(args, "%"+search+"%")
	}
	q += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("profile list: %w", err)
	}
	defer rows.Close()

	var res []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("profile list scan: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *profileRepository) CountByRole(role string) (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM profiles WHERE role = $1`, role).Scan(&c)
	return c, err
}

func (r *profileRepository) CountAdmittedSince(role string, intake string) (int, error) {
	var c int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM profiles WHERE role = $1 AND intake = $2`, role, intake,
	).Scan(&c)
	return c, err
}

// SetDocumentPath stores a generated/uploaded file path; column is one of the
// two fixed document columns, never caller input.
func (r *profileRepository) SetDocumentPath(id int64, column, path string) error {
	switch column {
	case "profile_image", "admission_letter":
	default:
		return fmt.Errorf("profile set document: unknown column %q", column)
	}
	q := fmt.Sprintf(`UPDATE profiles SET %s=$1 WHERE id=$2`, column)
	if _, err := r.DB.Exec(q, path, id); err != nil {
		return fmt.Errorf("profile set document: %w", err)
	}
	return nil
}
