package block

import "github.com/AtRiskMedia/ace-block/internal/domain/access"

// ViewerContext is derived per request from the host environment.
type ViewerContext struct {
	CurrentUserID int64 `json:"currentUserId"`
	// RequestedContextID is the optional "contextid" page parameter; 0 means absent.
	RequestedContextID int64 `json:"requestedContextId,omitempty"`
	// RequestedCourseID is the optional "course" page parameter; 0 means absent.
	RequestedCourseID int64          `json:"requestedCourseId,omitempty"`
	CurrentCourseID   int64          `json:"currentCourseId"`
	PageContext       access.Context `json:"pageContext"`
}
