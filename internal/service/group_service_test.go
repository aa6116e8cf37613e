package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tmusial/convoy/internal/directions"
	"github.com/tmusial/convoy/internal/journey"
	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/realtime"
	"github.com/tmusial/convoy/internal/storage"
	"github.com/tmusial/convoy/internal/storage/sqlite"
)

type stubRoutes struct{}

func (stubRoutes) Route(ctx context.Context, req directions.Request) (*directions.Route, error) {
	return &directions.Route{Distance: "1 km", Duration: "2 mins"}, nil
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newGroupService(t *testing.T) (*GroupService, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	journeys := journey.NewManager(store, stubRoutes{}, time.Hour)
	t.Cleanup(journeys.Shutdown)
	return NewGroupService(store, realtime.NewHub(), journeys), store
}

func TestCreateGroup(t *testing.T) {
	svc, _ := newGroupService(t)
	ctx := context.Background()

	t.Run("creator becomes leader and sole member", func(t *testing.T) {
		group, err := svc.Create(ctx, "alice", "Road Trip", models.GroupFollowMember, "")
		if err != nil {
			t.Fatalf("failed to create group: %v", err)
		}
		if group.LeaderID != "alice" {
			t.Errorf("leader = %q, want alice", group.LeaderID)
		}
		if len(group.MemberIDs) != 1 || group.MemberIDs[0] != "alice" {
			t.Errorf("members = %v", group.MemberIDs)
		}
		if group.JoinCode == "" {
			t.Error("expected a generated join code")
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", "", models.GroupFollowMember, "")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", "Trip", models.GroupType("teleport"), "")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects destination on follow group", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "somewhere")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects missing destination", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", "Trip", models.GroupTravelToDestination, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestJoinByCode(t *testing.T) {
	svc, _ := newGroupService(t)
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "")
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	t.Run("records a pending request", func(t *testing.T) {
		view, err := svc.JoinByCode(ctx, group.JoinCode, "bob")
		if err != nil {
			t.Fatalf("failed to join: %v", err)
		}
		if view.IsMember {
			t.Error("joining should not grant membership directly")
		}
		if !view.HasPendingRequest {
			t.Error("expected a pending request flag")
		}
	})

	t.Run("idempotent for pending requester", func(t *testing.T) {
		view, err := svc.JoinByCode(ctx, group.JoinCode, "bob")
		if err != nil {
			t.Fatalf("failed to rejoin: %v", err)
		}
		if got := len(view.Requests); got != 1 {
			t.Errorf("expected 1 request after repeat join, got %d", got)
		}
	})

	t.Run("idempotent for member", func(t *testing.T) {
		view, err := svc.JoinByCode(ctx, group.JoinCode, "alice")
		if err != nil {
			t.Fatalf("failed to join as member: %v", err)
		}
		if !view.IsMember || !view.IsLeader {
			t.Errorf("view = %+v, want member and leader flags", view)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.JoinByCode(ctx, "NOSUCH", "bob")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestApproveAndReject(t *testing.T) {
	svc, _ := newGroupService(t)
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "")
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	for _, u := range []string{"bob", "carol"} {
		if _, err := svc.JoinByCode(ctx, group.JoinCode, u); err != nil {
			t.Fatalf("failed to request join: %v", err)
		}
	}

	t.Run("non-leader cannot approve", func(t *testing.T) {
		_, err := svc.Approve(ctx, group.ID, "bob", "carol")
		if !errors.Is(err, ErrNotLeader) {
			t.Errorf("expected ErrNotLeader, got %v", err)
		}
	})

	t.Run("approve adds member", func(t *testing.T) {
		got, err := svc.Approve(ctx, group.ID, "alice", "bob")
		if err != nil {
			t.Fatalf("failed to approve: %v", err)
		}
		if !got.HasMember("bob") {
			t.Errorf("members = %v, want bob added", got.MemberIDs)
		}
		if got.PendingRequest("bob") != nil {
			t.Error("approved request should no longer be pending")
		}
	})

	t.Run("reject leaves membership unchanged", func(t *testing.T) {
		got, err := svc.Reject(ctx, group.ID, "alice", "carol")
		if err != nil {
			t.Fatalf("failed to reject: %v", err)
		}
		if got.HasMember("carol") {
			t.Error("rejected requester must not become a member")
		}
		if got.PendingRequest("carol") != nil {
			t.Error("rejected request should no longer be pending")
		}
	})

	t.Run("no pending request", func(t *testing.T) {
		_, err := svc.Approve(ctx, group.ID, "alice", "dave")
		if !errors.Is(err, ErrNoPendingRequest) {
			t.Errorf("expected ErrNoPendingRequest, got %v", err)
		}
	})
}

func addMember(t *testing.T, svc *GroupService, group *models.Group, userID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.JoinByCode(ctx, group.JoinCode, userID); err != nil {
		t.Fatalf("failed to request join: %v", err)
	}
	if _, err := svc.Approve(ctx, group.ID, group.LeaderID, userID); err != nil {
		t.Fatalf("failed to approve: %v", err)
	}
}

func TestLeaveGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("last member leaving deletes the group", func(t *testing.T) {
		svc, store := newGroupService(t)
		group, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "")
		if err != nil {
			t.Fatalf("failed to create group: %v", err)
		}

		if err := svc.Leave(ctx, group.ID, "alice"); err != nil {
			t.Fatalf("failed to leave: %v", err)
		}
		if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected group deleted, got %v", err)
		}
	})

	t.Run("leaving leader promotes the first remaining member", func(t *testing.T) {
		svc, store := newGroupService(t)
		group, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "")
		if err != nil {
			t.Fatalf("failed to create group: %v", err)
		}
		addMember(t, svc, group, "bob")
		addMember(t, svc, group, "carol")

		if err := svc.Leave(ctx, group.ID, "alice"); err != nil {
			t.Fatalf("failed to leave: %v", err)
		}
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("failed to get group: %v", err)
		}
		if got.LeaderID != "bob" {
			t.Errorf("leader = %q, want bob (first remaining member)", got.LeaderID)
		}
		if got.HasMember("alice") {
			t.Error("leaver still listed as member")
		}
	})

	t.Run("non-member cannot leave", func(t *testing.T) {
		svc, _ := newGroupService(t)
		group, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "")
		if err != nil {
			t.Fatalf("failed to create group: %v", err)
		}
		if err := svc.Leave(ctx, group.ID, "stranger"); !errors.Is(err, ErrNotMember) {
			t.Errorf("expected ErrNotMember, got %v", err)
		}
	})
}

func TestKick(t *testing.T) {
	ctx := context.Background()
	svc, store := newGroupService(t)
	group, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "")
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	addMember(t, svc, group, "bob")

	t.Run("non-leader cannot kick", func(t *testing.T) {
		_, err := svc.Kick(ctx, group.ID, "bob", "alice")
		if !errors.Is(err, ErrNotLeader) {
			t.Errorf("expected ErrNotLeader, got %v", err)
		}
	})

	t.Run("leader cannot kick themselves", func(t *testing.T) {
		_, err := svc.Kick(ctx, group.ID, "alice", "alice")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("kick removes member", func(t *testing.T) {
		got, err := svc.Kick(ctx, group.ID, "alice", "bob")
		if err != nil {
			t.Fatalf("failed to kick: %v", err)
		}
		if got.HasMember("bob") {
			t.Errorf("members = %v, want bob removed", got.MemberIDs)
		}
		reread, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("failed to get group: %v", err)
		}
		if reread.HasMember("bob") {
			t.Error("kick not persisted")
		}
	})
}

func TestSetDestination(t *testing.T) {
	ctx := context.Background()
	svc, store := newGroupService(t)

	err := store.PutDestination(ctx, &models.Destination{
		ID: "dest", Name: "Lighthouse", Position: models.LatLng{Lat: 1, Lng: 2},
	})
	if err != nil {
		t.Fatalf("failed to seed destination: %v", err)
	}

	group, err := svc.Create(ctx, "alice", "Trip", models.GroupTravelToDestination, "")
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	follow, err := svc.Create(ctx, "alice", "Chase", models.GroupFollowMember, "")
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	t.Run("leader sets destination", func(t *testing.T) {
		got, err := svc.SetDestination(ctx, group.ID, "alice", "dest")
		if err != nil {
			t.Fatalf("failed to set destination: %v", err)
		}
		if got.DestinationID != "dest" {
			t.Errorf("destination = %q", got.DestinationID)
		}
	})

	t.Run("rejected on follow group", func(t *testing.T) {
		_, err := svc.SetDestination(ctx, follow.ID, "alice", "dest")
		if !errors.Is(err, ErrWrongGroupType) {
			t.Errorf("expected ErrWrongGroupType, got %v", err)
		}
	})

	t.Run("rejected for non-leader", func(t *testing.T) {
		_, err := svc.SetDestination(ctx, group.ID, "bob", "dest")
		if !errors.Is(err, ErrNotLeader) {
			t.Errorf("expected ErrNotLeader, got %v", err)
		}
	})
}

func TestDeleteGroup(t *testing.T) {
	ctx := context.Background()
	svc, store := newGroupService(t)
	group, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "")
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	addMember(t, svc, group, "bob")

	if err := svc.Delete(ctx, group.ID, "bob"); !errors.Is(err, ErrNotLeader) {
		t.Fatalf("expected ErrNotLeader, got %v", err)
	}
	if err := svc.Delete(ctx, group.ID, "alice"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected group deleted, got %v", err)
	}
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGroupService(t)

	g1, err := svc.Create(ctx, "alice", "Trip", models.GroupFollowMember, "")
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	if _, err := svc.Create(ctx, "bob", "Other", models.GroupFollowMember, ""); err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	views, err := svc.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(views) != 1 || views[0].ID != g1.ID {
		t.Errorf("views = %+v, want only alice's group", views)
	}
	if !views[0].IsMember || !views[0].IsLeader {
		t.Errorf("view flags = %+v", views[0])
	}
}
