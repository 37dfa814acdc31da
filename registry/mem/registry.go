// Package mem is an in-memory ResourceRegistry for tests and embedded use.
// Every mutation of a resource's owner, group, or member set bumps its
// version by exactly 1, the way a backing store's row version would.
package mem

import (
	"context"
	"sync"

	"github.com/xbcsmith/xzepr-sub005/types"
)

type Registry struct {
	mu        sync.RWMutex
	resources map[types.ResourceID]*types.Resource
	groups    map[types.GroupID]map[types.UserID]struct{}
}

var _ types.ResourceRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry, optionally seeded with resources
func NewRegistry(seed ...types.Resource) *Registry {
	r := &Registry{
		resources: make(map[types.ResourceID]*types.Resource),
		groups:    make(map[types.GroupID]map[types.UserID]struct{}),
	}
	for _, res := range seed {
		r.SetResource(res)
	}
	return r
}

// SetResource inserts or replaces a resource as-is, keeping its version.
// Use the mutators to model version-bumping changes.
func (r *Registry) SetResource(res types.Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := res
	stored.Members = copySet(res.Members)
	if stored.Version == 0 {
		stored.Version = 1
	}
	r.resources[res.ID] = &stored
	if res.Group != "" {
		r.groups[res.Group] = copySet(res.Members)
	}
}

// SetOwner changes the resource's owner and bumps its version
func (r *Registry) SetOwner(id types.ResourceID, owner types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resources[id]
	if !ok {
		return types.ErrNotFound
	}
	res.Owner = owner
	res.Version++
	return nil
}

// SetGroup changes the group the resource belongs to and bumps its version.
// An empty group detaches the resource.
func (r *Registry) SetGroup(id types.ResourceID, group types.GroupID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resources[id]
	if !ok {
		return types.ErrNotFound
	}
	res.Group = group
	res.Version++
	if group != "" && r.groups[group] == nil {
		r.groups[group] = make(map[types.UserID]struct{})
	}
	return nil
}

// AddMember adds a user to the resource's member set and bumps its version
func (r *Registry) AddMember(id types.ResourceID, user types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resources[id]
	if !ok {
		return types.ErrNotFound
	}
	if res.Members == nil {
		res.Members = make(map[types.UserID]struct{})
	}
	res.Members[user] = struct{}{}
	res.Version++
	if res.Group != "" {
		if r.groups[res.Group] == nil {
			r.groups[res.Group] = make(map[types.UserID]struct{})
		}
		r.groups[res.Group][user] = struct{}{}
	}
	return nil
}

// RemoveMember removes a user from the resource's member set and bumps its version
func (r *Registry) RemoveMember(id types.ResourceID, user types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resources[id]
	if !ok {
		return types.ErrNotFound
	}
	delete(res.Members, user)
	res.Version++
	if res.Group != "" {
		delete(r.groups[res.Group], user)
	}
	return nil
}

// OwnerOf returns the owner of the resource
func (r *Registry) OwnerOf(_ context.Context, id types.ResourceID) (types.UserID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[id]
	if !ok {
		return "", types.ErrNotFound
	}
	return res.Owner, nil
}

// GroupOf returns the group the resource belongs to, empty if ungrouped
func (r *Registry) GroupOf(_ context.Context, id types.ResourceID) (types.GroupID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[id]
	if !ok {
		return "", types.ErrNotFound
	}
	return res.Group, nil
}

// MembersOf returns the member set of the group
func (r *Registry) MembersOf(_ context.Context, group types.GroupID) (map[types.UserID]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.groups[group]
	if !ok {
		return nil, types.ErrNotFound
	}
	return copySet(members), nil
}

// VersionOf returns the current version of the resource
func (r *Registry) VersionOf(_ context.Context, id types.ResourceID) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[id]
	if !ok {
		return 0, types.ErrNotFound
	}
	return res.Version, nil
}

// FactsOf returns the full snapshot under one lock acquisition, so the
// version always matches the facts it is reported with
func (r *Registry) FactsOf(_ context.Context, id types.ResourceID) (types.ResourceFacts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[id]
	if !ok {
		return types.ResourceFacts{}, types.ErrNotFound
	}
	return types.ResourceFacts{
		Owner:   res.Owner,
		Group:   res.Group,
		Members: copySet(res.Members),
		Version: res.Version,
	}, nil
}

func copySet(in map[types.UserID]struct{}) map[types.UserID]struct{} {
	out := make(map[types.UserID]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
