package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/domain/block"
	"github.com/AtRiskMedia/ace-block/internal/domain/user"
)

type fakeContexts struct {
	byID map[int64]*access.Context
}

func newFakeContexts(contexts ...*access.Context) *fakeContexts {
	f := &fakeContexts{byID: make(map[int64]*access.Context)}
	for _, c := range contexts {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeContexts) FindByID(_ context.Context, id int64) (*access.Context, error) {
	return f.byID[id], nil
}

func (f *fakeContexts) SystemContext(_ context.Context) (*access.Context, error) {
	for _, c := range f.byID {
		if c.Level == access.LevelSystem {
			return c, nil
		}
	}
	return nil, access.ErrContextNotFound
}

func (f *fakeContexts) CourseContext(_ context.Context, courseID int64) (*access.Context, error) {
	for _, c := range f.byID {
		if c.Level == access.LevelCourse && c.InstanceID == courseID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeContexts) CourseIDForContext(_ context.Context, contextID int64, siteCourseID int64) (int64, error) {
	for c := f.byID[contextID]; c != nil; {
		if c.Level == access.LevelCourse {
			return c.InstanceID, nil
		}
		if c.ParentID == nil {
			break
		}
		c = f.byID[*c.ParentID]
	}
	return siteCourseID, nil
}

type fakeUsers struct {
	byID map[int64]*access.User
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*access.User, error) {
	return f.byID[id], nil
}

type fakeCapabilities struct {
	mu     sync.Mutex
	grants map[string]bool
	err    error
}

func capabilityKey(userID int64, capability string, contextID int64) string {
	return fmt.Sprintf("%d|%s|%d", userID, capability, contextID)
}

func (f *fakeCapabilities) grant(userID int64, capability string, contextID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[capabilityKey(userID, capability, contextID)] = true
}

func (f *fakeCapabilities) HasCapability(_ context.Context, userID int64, capability string, contextID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grants[capabilityKey(userID, capability, contextID)], nil
}

// fakeGraphs returns "<kind:args>" fragments unless the kind is listed in empty.
type fakeGraphs struct {
	calls []string
	empty map[string]bool
	err   error
}

func (f *fakeGraphs) respond(kind string, args ...int64) (string, error) {
	call := kind
	for _, a := range args {
		call += fmt.Sprintf(":%d", a)
	}
	f.calls = append(f.calls, call)
	if f.err != nil {
		return "", f.err
	}
	if f.empty[kind] {
		return "", nil
	}
	return "<" + call + ">", nil
}

func (f *fakeGraphs) StudentGraph(_ context.Context, userID, courseID int64, showAllTime bool) (string, error) {
	var all int64
	if showAllTime {
		all = 1
	}
	return f.respond("student", userID, courseID, all)
}

func (f *fakeGraphs) CourseGraph(_ context.Context, courseID int64) (string, error) {
	return f.respond("course", courseID)
}

func (f *fakeGraphs) StudentFullGraph(_ context.Context, userID, courseID int64) (string, error) {
	return f.respond("studentfull", userID, courseID)
}

func (f *fakeGraphs) TeacherCourseGraph(_ context.Context, userID int64) (string, error) {
	return f.respond("teachercourse", userID)
}

func (f *fakeGraphs) ActivityEngagementGraph(_ context.Context, courseModuleID int64) (string, error) {
	return f.respond("activity", courseModuleID)
}

type fakePreferences struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakePreferences() *fakePreferences {
	return &fakePreferences{values: make(map[string]string)}
}

func prefKey(userID int64, name string) string {
	return fmt.Sprintf("%d|%s", userID, name)
}

func (f *fakePreferences) Get(_ context.Context, userID int64, name string) (*user.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[prefKey(userID, name)]
	if !ok {
		return nil, nil
	}
	return &user.Preference{UserID: userID, Name: name, Value: v}, nil
}

func (f *fakePreferences) GetBool(ctx context.Context, userID int64, name string, defaultValue bool) (bool, error) {
	p, _ := f.Get(ctx, userID, name)
	if p == nil {
		return defaultValue, nil
	}
	return p.Value == "1" || p.Value == "true", nil
}

func (f *fakePreferences) Set(_ context.Context, userID int64, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[prefKey(userID, name)] = value
	return nil
}

type fakeInstances struct {
	byID map[string]*block.Instance
}

func newFakeInstances() *fakeInstances {
	return &fakeInstances{byID: make(map[string]*block.Instance)}
}

func (f *fakeInstances) FindByID(_ context.Context, id string) (*block.Instance, error) {
	instance, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *instance
	return &copied, nil
}

func (f *fakeInstances) FindByParentContext(_ context.Context, contextID int64) ([]*block.Instance, error) {
	var out []*block.Instance
	for _, instance := range f.byID {
		if instance.ParentContextID == contextID {
			copied := *instance
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeInstances) Store(_ context.Context, instance *block.Instance) error {
	if _, exists := f.byID[instance.ID]; exists {
		return errors.New("duplicate id")
	}
	copied := *instance
	f.byID[instance.ID] = &copied
	return nil
}

func (f *fakeInstances) UpdateConfig(_ context.Context, id string, config block.WidgetConfig) error {
	instance, ok := f.byID[id]
	if !ok {
		return block.ErrInstanceNotFound
	}
	instance.Config = config
	return nil
}
