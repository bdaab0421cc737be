// Package model holds the typed records behind each store collection.
package model

import "time"

// Student is a registered learner. JoinDate cannot change once set.
type Student struct {
	ID           string    `json:"-"`
	Name         string    `json:"studentName" validate:"required"`
	GuardianName string    `json:"guardianName"`
	Contact      string    `json:"contact"`
	AltContact   string    `json:"altContact,omitempty"`
	Email        string    `json:"email" validate:"omitempty,email"`
	JoinDate     time.Time `json:"joinDate"`
	Fee          float64   `json:"fee" validate:"gte=0"`
	CourseIDs    []string  `json:"courseIds,omitempty"`
}

// Teacher is a registered instructor. Specialities are course ids.
type Teacher struct {
	ID           string    `json:"-"`
	Name         string    `json:"name" validate:"required"`
	Age          int       `json:"age" validate:"omitempty,gte=18"`
	Contact      string    `json:"contact"`
	Email        string    `json:"email,omitempty" validate:"omitempty,email"`
	Address      string    `json:"address"`
	JoinDate     time.Time `json:"joinDate"`
	Specialities []string  `json:"specialities,omitempty"`
}

// Course is something the academy teaches.
type Course struct {
	ID   string  `json:"-"`
	Name string  `json:"courseName" validate:"required"`
	Fee  float64 `json:"courseFee" validate:"gte=0"`
}

// Batch is a timed grouping of one course, its students and its teachers.
type Batch struct {
	ID         string    `json:"-"`
	Name       string    `json:"name" validate:"required"`
	Timing     time.Time `json:"timing" validate:"required"`
	CourseID   string    `json:"courseId" validate:"required"`
	StudentIDs []string  `json:"students"`
	TeacherIDs []string  `json:"teachers"`
}

// HasStudent reports whether id is on the batch roster.
func (b Batch) HasStudent(id string) bool {
	for _, s := range b.StudentIDs {
		if s == id {
			return true
		}
	}
	return false
}

// MonthlyAttendance is the monthly-by-student record.
type MonthlyAttendance struct {
	ID          string            `json:"-"`
	StudentID   string            `json:"studentId" validate:"required"`
	StudentName string            `json:"studentName"`
	BatchID     string            `json:"batchId,omitempty"`
	Month       string            `json:"month" validate:"required"`
	Attendance  map[string]Status `json:"attendance"`
}

// DailyAttendance is the daily-by-batch record.
type DailyAttendance struct {
	ID      string            `json:"-"`
	BatchID string            `json:"batchId" validate:"required"`
	Date    string            `json:"date" validate:"required"`
	Records map[string]Status `json:"records"`
}
