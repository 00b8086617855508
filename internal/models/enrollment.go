package models

import "time"

// Enrollment links a user to a course with a progress percentage.
// The (user_id, course_id) pair is unique.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Progress   float64   `db:"progress" json:"progress"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentReportRow is the flat shape used by the admin enrollment report.
type EnrollmentReportRow struct {
	ID           string    `db:"id"`
	Progress     float64   `db:"progress"`
	EnrolledAt   time.Time `db:"enrolled_at"`
	UserName     string    `db:"user_name"`
	UserEmail    string    `db:"user_email"`
	CourseTitle  string    `db:"course_title"`
	CategoryName string    `db:"category_name"`
}

// EnrollmentDetail enriches Enrollment with course info for "my courses".
type EnrollmentDetail struct {
	Enrollment
	CourseTitle   string      `db:"course_title" json:"course_title"`
	CourseLevel   CourseLevel `db:"course_level" json:"course_level"`
	CategoryName  string      `db:"category_name" json:"category_name"`
	CategoryColor string      `db:"category_color" json:"category_color"`
}
