package block

import (
	"context"
	"errors"
	"time"
)

// ErrInstanceNotFound is returned when a block instance id does not exist.
var ErrInstanceNotFound = errors.New("block instance not found")

// WidgetConfig holds the per-instance configuration set by an administrator.
type WidgetConfig struct {
	GraphType string `json:"graphtype"`
}

// Mode resolves the configured graph type.
func (c WidgetConfig) Mode() (Mode, error) {
	return ParseMode(c.GraphType)
}

// Instance is one placement of the block on a page.
type Instance struct {
	ID              string       `json:"id"`
	ParentContextID int64        `json:"parentContextId"`
	Config          WidgetConfig `json:"config"`
	Created         time.Time    `json:"created"`
	Changed         time.Time    `json:"changed"`
}

// InstanceRepository persists block instances. Missing instances yield (nil, nil).
type InstanceRepository interface {
	FindByID(ctx context.Context, id string) (*Instance, error)
	FindByParentContext(ctx context.Context, contextID int64) ([]*Instance, error)
	Store(ctx context.Context, instance *Instance) error
	UpdateConfig(ctx context.Context, id string, config WidgetConfig) error
}
