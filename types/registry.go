package types

import "context"

// ResourceRegistry reads persisted ownership and membership facts from an
// external store. Pure read path: the core never mutates resources.
//
// Implementations must return values consistent with each other within one
// call: FactsOf in particular is a single consistent read, so the Version it
// reports matches the owner, group, and members it reports.
type ResourceRegistry interface {
	// OwnerOf returns the owner of the resource
	OwnerOf(ctx context.Context, id ResourceID) (UserID, error)

	// GroupOf returns the group the resource belongs to, empty if ungrouped
	GroupOf(ctx context.Context, id ResourceID) (GroupID, error)

	// MembersOf returns the member set of the group
	MembersOf(ctx context.Context, group GroupID) (map[UserID]struct{}, error)

	// VersionOf returns the current version of the resource
	VersionOf(ctx context.Context, id ResourceID) (uint64, error)

	// FactsOf returns the full snapshot a decision is evaluated against
	FactsOf(ctx context.Context, id ResourceID) (ResourceFacts, error)
}
