package app

import (
	"context"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
)

type SubscriberService struct {
	repo port.SubscriberRepository
}

func NewSubscriberService(repo port.SubscriberRepository) *SubscriberService {
	return &SubscriberService{repo: repo}
}

func (s *SubscriberService) SetState(ctx context.Context, userID, chatID int64, state entity.SubscriberState) (*entity.Subscriber, error) {
	sub, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	sub.SetState(state)
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *SubscriberService) Subscribe(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	return s.SetState(ctx, userID, chatID, entity.SubscriberActive)
}

func (s *SubscriberService) Unsubscribe(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	return s.SetState(ctx, userID, chatID, entity.SubscriberInactive)
}

// ActiveChats возвращает чаты активных подписчиков без повторов.
func (s *SubscriberService) ActiveChats(ctx context.Context) ([]int64, error) {
	subs, err := s.repo.Active(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(subs))
	chats := make([]int64, 0, len(subs))
	for _, sub := range subs {
		if seen[sub.ChatID] {
			continue
		}
		seen[sub.ChatID] = true
		chats = append(chats, sub.ChatID)
	}
	return chats, nil
}
