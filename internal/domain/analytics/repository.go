// Package analytics defines the graph providers the block delegates to.
// Every provider returns a renderable HTML fragment, or "" when there is
// no data to show.
package analytics

import "context"

// GraphKind names a graph provider endpoint.
type GraphKind string

const (
	GraphStudent       GraphKind = "student"
	GraphCourse        GraphKind = "course"
	GraphStudentFull   GraphKind = "studentfull"
	GraphTeacherCourse GraphKind = "teachercourse"
	GraphActivity      GraphKind = "activity"
)

// GraphProvider produces engagement graph fragments.
type GraphProvider interface {
	StudentGraph(ctx context.Context, userID, courseID int64, showAllTime bool) (string, error)
	CourseGraph(ctx context.Context, courseID int64) (string, error)
	StudentFullGraph(ctx context.Context, userID, courseID int64) (string, error)
	TeacherCourseGraph(ctx context.Context, userID int64) (string, error)
	ActivityEngagementGraph(ctx context.Context, courseModuleID int64) (string, error)
}
