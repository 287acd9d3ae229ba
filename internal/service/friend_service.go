package service

import (
	"context"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

type FriendService struct {
	friendships   *repo.FriendshipRepo
	users         *repo.UserRepo
	notifications *NotificationService
}

func NewFriendService(friendships *repo.FriendshipRepo, users *repo.UserRepo, notifications *NotificationService) *FriendService {
	return &FriendService{
		friendships:   friendships,
		users:         users,
		notifications: notifications,
	}
}

// FriendStatus describes the relation between the caller and another user.
type FriendStatus struct {
	Status string `json:"status"`
	// Direction is "outgoing" or "incoming" for pending requests, empty
	// otherwise.
	Direction    string `json:"direction,omitempty"`
	FriendshipID string `json:"friendship_id,omitempty"`
}

// Request sends a friend request to another user. A pair rejected earlier may
// be requested again; the stale row is replaced.
func (s *FriendService) Request(ctx context.Context, requesterID, addresseeID string) (*model.Friendship, error) {
	if addresseeID == requesterID {
		return nil, appErr.ErrInvalid
	}
	addressee, err := s.users.GetByID(ctx, addresseeID)
	if err != nil {
		return nil, err
	}
	existing, err := s.friendships.GetByPair(ctx, requesterID, addressee.ID)
	if err != nil && !appErr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		if existing.Status != model.FriendshipRejected {
			return nil, appErr.ErrConflict
		}
		if err := s.friendships.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
	}
	now := timeutil.NowUnix()
	friendship := &model.Friendship{
		ID:          newID(),
		RequesterID: requesterID,
		AddresseeID: addressee.ID,
		Status:      model.FriendshipPending,
		Ctime:       now,
		Mtime:       now,
	}
	if err := s.friendships.Create(ctx, friendship); err != nil {
		if dbutil.IsConflict(err) {
			return nil, appErr.ErrConflict
		}
		return nil, err
	}
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, addressee.ID, model.NotificationFriendRequest,
		requester.Username+" sent you a friend request")
	return friendship, nil
}

// Accept transitions a pending request to accepted. Only the addressee may
// accept.
func (s *FriendService) Accept(ctx context.Context, userID, friendshipID string) (*model.Friendship, error) {
	friendship, err := s.respond(ctx, userID, friendshipID, model.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	addressee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, friendship.RequesterID, model.NotificationFriendAccepted,
		addressee.Username+" accepted your friend request")
	return friendship, nil
}

// Reject transitions a pending request to rejected. Only the addressee may
// reject.
func (s *FriendService) Reject(ctx context.Context, userID, friendshipID string) (*model.Friendship, error) {
	return s.respond(ctx, userID, friendshipID, model.FriendshipRejected)
}

func (s *FriendService) respond(ctx context.Context, userID, friendshipID, status string) (*model.Friendship, error) {
	friendship, err := s.friendships.Get(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	if friendship.AddresseeID != userID {
		return nil, appErr.ErrForbidden
	}
	if friendship.Status != model.FriendshipPending {
		return nil, appErr.ErrConflict
	}
	now := timeutil.NowUnix()
	if err := s.friendships.UpdateStatus(ctx, friendshipID, status, now); err != nil {
		return nil, err
	}
	friendship.Status = status
	friendship.Mtime = now
	return friendship, nil
}

// FriendEntry pairs a friendship row with the other party's public fields.
type FriendEntry struct {
	FriendshipID string `json:"friendship_id"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	AvatarKey    string `json:"avatar_key,omitempty"`
	Since        int64  `json:"since"`
}

func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]*FriendEntry, error) {
	friendships, err := s.friendships.ListAcceptedFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		ids = append(ids, f.OtherID(userID))
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	entries := make([]*FriendEntry, 0, len(friendships))
	for _, f := range friendships {
		other, ok := byID[f.OtherID(userID)]
		if !ok {
			continue
		}
		entries = append(entries, &FriendEntry{
			FriendshipID: f.ID,
			UserID:       other.ID,
			Username:     other.Username,
			Email:        other.Email,
			AvatarKey:    other.AvatarKey,
			Since:        f.Mtime,
		})
	}
	return entries, nil
}

func (s *FriendService) ListIncoming(ctx context.Context, userID string) ([]*FriendEntry, error) {
	friendships, err := s.friendships.ListIncomingPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		ids = append(ids, f.RequesterID)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	entries := make([]*FriendEntry, 0, len(friendships))
	for _, f := range friendships {
		requester, ok := byID[f.RequesterID]
		if !ok {
			continue
		}
		entries = append(entries, &FriendEntry{
			FriendshipID: f.ID,
			UserID:       requester.ID,
			Username:     requester.Username,
			Email:        requester.Email,
			AvatarKey:    requester.AvatarKey,
			Since:        f.Ctime,
		})
	}
	return entries, nil
}

// Status reports the relation between the caller and another user.
func (s *FriendService) Status(ctx context.Context, userID, otherID string) (*FriendStatus, error) {
	if otherID == userID {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		return nil, err
	}
	friendship, err := s.friendships.GetByPair(ctx, userID, otherID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return &FriendStatus{Status: "none"}, nil
		}
		return nil, err
	}
	status := &FriendStatus{Status: friendship.Status, FriendshipID: friendship.ID}
	if friendship.Status == model.FriendshipPending {
		if friendship.RequesterID == userID {
			status.Direction = "outgoing"
		} else {
			status.Direction = "incoming"
		}
	}
	return status, nil
}

// Remove deletes an accepted friendship. Either side may remove.
func (s *FriendService) Remove(ctx context.Context, userID, friendshipID string) error {
	friendship, err := s.friendships.Get(ctx, friendshipID)
	if err != nil {
		return err
	}
	if friendship.RequesterID != userID && friendship.AddresseeID != userID {
		return appErr.ErrForbidden
	}
	return s.friendships.Delete(ctx, friendshipID)
}
