package domain

import (
	"testing"
	"time"
)

func TestCoursePubliclyVisible(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		course Course
		want   bool
	}{
		{"published and approved", Course{Status: CourseStatusPublished, IsApproved: true}, true},
		{"published unapproved", Course{Status: CourseStatusPublished, IsApproved: false}, false},
		{"approved but draft", Course{Status: CourseStatusDraft, IsApproved: true}, false},
		{"approved but archived", Course{Status: CourseStatusArchived, IsApproved: true}, false},
		{"soft deleted", Course{Status: CourseStatusPublished, IsApproved: true, DeletedAt: &now}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.course.PubliclyVisible(); got != tc.want {
				t.Fatalf("PubliclyVisible() = %v, want %v", got, tc.want)
			}
		})
	}
}
