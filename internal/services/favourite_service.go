package services

import (
	"context"
	"strings"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
	"seenstudio/internal/repos"
)

type FavouriteService struct {
	Favs *repos.FavouriteRepo
}

func NewFavouriteService(favs *repos.FavouriteRepo) *FavouriteService {
	return &FavouriteService{Favs: favs}
}

func (s *FavouriteService) List(ctx context.Context, userID string) ([]domain.Favourite, error) {
	return s.Favs.List(ctx, userID)
}

func (s *FavouriteService) Add(ctx context.Context, userID, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return apperr.New(apperr.CodeValidation, "Product ID is required").
			WithDetails(map[string]string{"productId": "is required"})
	}
	return s.Favs.Add(ctx, userID, productID)
}

func (s *FavouriteService) Remove(ctx context.Context, userID, productID string) error {
	return s.Favs.Remove(ctx, userID, productID)
}
