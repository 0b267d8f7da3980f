package models

import (
	"fmt"
	"time"
)

// Course is the top-level unit of assessment. Sections and their records are
// owned by the course and removed with it.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	TermSemester string    `db:"term_semester" json:"term_semester"`
	Coordinator  string    `db:"coordinator" json:"coordinator"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Section groups the assessment records taught by one instructor.
type Section struct {
	ID            string    `db:"id" json:"id"`
	CourseID      string    `db:"course_id" json:"course_id"`
	SectionNumber int       `db:"section_number" json:"section_number"`
	Instructor    string    `db:"instructor" json:"instructor"`
	TotalStudents int       `db:"total_students" json:"total_students"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	Records []AssessmentRecord `json:"records,omitempty"`
}

// Label returns the section identifier used verbatim on chart axes.
func (s Section) Label() string {
	return fmt.Sprintf("Section %d", s.SectionNumber)
}

// Pagination carries standard list metadata in API responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}
