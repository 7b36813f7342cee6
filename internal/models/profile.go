package models

import "time"

// Profile — one personnel record per user. The three historical profile kinds
// (student / teaching staff / non-teaching staff) share this single row shape,
// discriminated by Role; unused columns stay NULL for the other kinds.
type Profile struct {
	ID     int64  `json:"id"`
	UserID int    `json:"user_id"`
	Role   string `json:"role"`

	// student fields
	Level           string     `json:"level,omitempty"`
	Program         string     `json:"program,omitempty"`
	Intake          string     `json:"intake,omitempty"`
	DateOfAdmission *time.Time `json:"date_of_admission,omitempty"`
	TuitionFee      float64    `json:"tuition_fee,omitempty"`
	Balance         float64    `json:"balance,omitempty"`
	AmountDue       float64    `json:"amount_due,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	PaymentStatus   string     `json:"payment_status,omitempty"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	Remarks         string     `json:"remarks,omitempty"`

	// staff fields (teaching and non-teaching)
	SubjectTaught    string     `json:"subject_taught,omitempty"`
	Department       string     `json:"department,omitempty"`
	DateOfEmployment *time.Time `json:"date_of_employment,omitempty"`
	CollegeDegree    string     `json:"college_degree,omitempty"`

	// stored document paths under the files root
	ProfileImage    string `json:"profile_image,omitempty"`
	AdmissionLetter string `json:"admission_letter,omitempty"`
}
