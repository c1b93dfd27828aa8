// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package follow

import (
	"context"
	"log/slog"

	"github.com/taibuivan/mangaden/internal/manga"
)

// # Service Layer

// Service orchestrates reading-list subscriptions.
type Service struct {
	followRepo Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(followRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		followRepo: followRepo,
		logger:     logger,
	}
}

// # Subscription Operations

/*
Toggle flips the follow state for a (user, manga) pair.

Parameters:
  - context: context.Context
  - userID: string (Actor)
  - target: *manga.Manga (Resolved, non-deleted)

Returns:
  - bool: The NEW state (true = now following)
  - error: Storage failures
*/
func (service *Service) Toggle(context context.Context, userID string, target *manga.Manga) (bool, error) {

	following, err := service.followRepo.Exists(context, userID, target.ID)
	if err != nil {
		return false, err
	}

	if following {
		if err := service.followRepo.Delete(context, userID, target.ID); err != nil {
			return false, err
		}

		service.logger.Info("manga_unfollowed",
			slog.String("user_id", userID),
			slog.String("manga_id", target.ID),
		)
		return false, nil
	}

	if err := service.followRepo.Insert(context, userID, target.ID); err != nil {
		return false, err
	}

	service.logger.Info("manga_followed",
		slog.String("user_id", userID),
		slog.String("manga_id", target.ID),
	)
	return true, nil
}

/*
Follow subscribes the user. Already-following is a silent success.
*/
func (service *Service) Follow(context context.Context, userID string, target *manga.Manga) error {
	return service.followRepo.Insert(context, userID, target.ID)
}

/*
Unfollow unsubscribes the user. Not-following is a silent success.
*/
func (service *Service) Unfollow(context context.Context, userID string, target *manga.Manga) error {
	return service.followRepo.Delete(context, userID, target.ID)
}

// IsFollowing reports the current follow state.
func (service *Service) IsFollowing(context context.Context, userID string, target *manga.Manga) (bool, error) {
	return service.followRepo.Exists(context, userID, target.ID)
}

/*
ListFollowed returns the user's reading list, most recently followed first.
*/
func (service *Service) ListFollowed(context context.Context, userID string, limit, offset int) ([]*manga.Manga, int, error) {
	return service.followRepo.ListByUser(context, userID, limit, offset)
}
