package models

// PlatformStats aggregates platform-wide counts for the admin dashboard.
type PlatformStats struct {
	TotalUsers       int `db:"total_users" json:"totalUsers"`
	TotalMessages    int `db:"total_messages" json:"totalMessages"`
	TotalCourses     int `db:"total_courses" json:"totalCourses"`
	TotalEnrollments int `db:"total_enrollments" json:"totalEnrollments"`
}
