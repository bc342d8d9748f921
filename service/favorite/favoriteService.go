package favoritesvc

import (
	"context"

	"github.com/waan1232/campus-share-app-sub000/model"
	favoriterepo "github.com/waan1232/campus-share-app-sub000/repository/favorite"
)

type Service interface {
	// Toggle flips (userID, itemID) membership and reports the new state.
	Toggle(ctx context.Context, userID, itemID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]model.Favorite, error)
}

type service struct{ fr favoriterepo.Repo }

func New(fr favoriterepo.Repo) Service { return &service{fr: fr} }

func (s *service) Toggle(ctx context.Context, userID, itemID int64) (bool, error) {
	return s.fr.Toggle(ctx, userID, itemID)
}

func (s *service) List(ctx context.Context, userID int64) ([]model.Favorite, error) {
	favs, err := s.fr.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if favs == nil {
		favs = []model.Favorite{}
	}
	return favs, nil
}
