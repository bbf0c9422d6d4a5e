// Package access defines the host context tree, user records and the
// capability oracle the block consults before rendering anything.
// These interfaces abstract the data persistence details, ensuring the core
// application is clean and decoupled from the database.
package access

import (
	"context"
	"errors"
)

// ContextLevel identifies the kind of scope a context represents.
type ContextLevel int

const (
	LevelSystem   ContextLevel = 10
	LevelUser     ContextLevel = 30
	LevelCategory ContextLevel = 40
	LevelCourse   ContextLevel = 50
	LevelModule   ContextLevel = 70
	LevelBlock    ContextLevel = 80
)

// String returns the host name for the level.
func (l ContextLevel) String() string {
	switch l {
	case LevelSystem:
		return "system"
	case LevelUser:
		return "user"
	case LevelCategory:
		return "coursecat"
	case LevelCourse:
		return "course"
	case LevelModule:
		return "module"
	case LevelBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Capability names used by the block.
const (
	CapabilityViewOwn       = "local/ace:viewown"
	CapabilityView          = "local/ace:view"
	CapabilityAddInstance   = "block/ace:addinstance"
	CapabilityMyAddInstance = "block/ace:myaddinstance"
)

// Permission values stored against a capability grant.
const (
	PermissionAllow    = 1
	PermissionPrevent  = -1
	PermissionProhibit = -1000
)

var (
	// ErrUserNotFound is returned when a user context points at a missing user record.
	ErrUserNotFound = errors.New("user record not found")
	// ErrContextNotFound is returned when a required context does not exist.
	ErrContextNotFound = errors.New("context not found")
)

// Context is a node of the host context tree.
type Context struct {
	ID         int64        `json:"id"`
	Level      ContextLevel `json:"contextLevel"`
	InstanceID int64        `json:"instanceId"`
	ParentID   *int64       `json:"parentId,omitempty"`
}

// User is the subset of the host user record the block needs.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Deleted   bool   `json:"deleted"`
}

// ContextRepository looks up contexts. Missing contexts yield (nil, nil).
type ContextRepository interface {
	FindByID(ctx context.Context, id int64) (*Context, error)
	SystemContext(ctx context.Context) (*Context, error)
	CourseContext(ctx context.Context, courseID int64) (*Context, error)
	UserContext(ctx context.Context, userID int64) (*Context, error)
	CourseIDForContext(ctx context.Context, contextID int64, siteCourseID int64) (int64, error)
	Store(ctx context.Context, c *Context) error
}

// UserRepository looks up users. Missing users yield (nil, nil).
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	Store(ctx context.Context, u *User) error
}

// CapabilityChecker answers whether a user holds a capability in a context.
type CapabilityChecker interface {
	HasCapability(ctx context.Context, userID int64, capability string, contextID int64) (bool, error)
}

// CapabilityRepository persists capability grants and evaluates them.
type CapabilityRepository interface {
	CapabilityChecker
	Grant(ctx context.Context, userID int64, capability string, contextID int64, permission int) error
}
