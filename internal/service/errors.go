package service

import "errors"

var (
	// ErrInvalidInput rejects malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotMember rejects group operations by non-members.
	ErrNotMember = errors.New("not a member of this group")

	// ErrNotLeader rejects leader-only operations.
	ErrNotLeader = errors.New("only the group leader can do this")

	// ErrNotMarkerCreator rejects marker edits by anyone but the creator.
	ErrNotMarkerCreator = errors.New("only the marker creator can modify it")

	// ErrNoPendingRequest means no pending join request exists for the user.
	ErrNoPendingRequest = errors.New("no pending join request")

	// ErrWrongGroupType rejects an operation that does not apply to the
	// group's type (e.g. setting a destination on a follow group).
	ErrWrongGroupType = errors.New("operation does not apply to this group type")
)
