package models

import "time"

// CourseLevel represents the difficulty of a course.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// Course is a catalog entry taught by an instructor within a category.
type Course struct {
	ID           string      `db:"id" json:"id"`
	Title        string      `db:"title" json:"title"`
	Description  string      `db:"description" json:"description"`
	Price        float64     `db:"price" json:"price"`
	Duration     int         `db:"duration" json:"duration"`
	Level        CourseLevel `db:"level" json:"level"`
	IsActive     bool        `db:"is_active" json:"is_active"`
	CategoryID   string      `db:"category_id" json:"category_id"`
	InstructorID string      `db:"instructor_id" json:"instructor_id"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with category and instructor info plus
// the enrollment count, the shape served by the public catalog.
type CourseDetail struct {
	Course
	CategoryName    string `db:"category_name" json:"category_name"`
	CategoryColor   string `db:"category_color" json:"category_color"`
	InstructorName  string `db:"instructor_name" json:"instructor_name"`
	EnrollmentCount int    `db:"enrollment_count" json:"enrollment_count"`
}

// CourseView is a CourseDetail plus the caller's enrollment state.
type CourseView struct {
	CourseDetail
	IsEnrolled bool `json:"is_enrolled"`
}
