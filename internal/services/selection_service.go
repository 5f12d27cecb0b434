package services

import (
	"context"
	"fmt"
	"strings"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
	"seenstudio/internal/repos"
	"seenstudio/internal/selection"
)

// HomeDiscoverService manages the four product slots of the homepage Discover strip.
type HomeDiscoverService struct {
	Store *selection.Store
	Prods *repos.ProductRepo
}

func NewHomeDiscoverService(store *selection.Store, prods *repos.ProductRepo) *HomeDiscoverService {
	return &HomeDiscoverService{Store: store, Prods: prods}
}

func (s *HomeDiscoverService) Selection(ctx context.Context) ([]domain.HomeSelection, error) {
	entries, err := s.Store.List(ctx, selection.SurfaceHome)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HomeSelection, len(entries))
	for i, e := range entries {
		out[i] = domain.HomeSelection{ProductID: e.ID, Position: e.Position}
	}
	return out, nil
}

func (s *HomeDiscoverService) Replace(ctx context.Context, productIDs []string) ([]domain.HomeSelection, error) {
	if _, err := s.Store.Replace(ctx, selection.SurfaceHome, productIDs); err != nil {
		return nil, err
	}
	return s.Selection(ctx)
}

// Products returns the selected active products in strip order.
func (s *HomeDiscoverService) Products(ctx context.Context) ([]domain.Product, error) {
	ids, err := s.Store.IDs(ctx, selection.SurfaceHome)
	if err != nil {
		return nil, err
	}
	byID, err := s.Prods.ActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// InstagramService manages the post gallery and its desktop and mobile features.
type InstagramService struct {
	Store *selection.Store
	Posts *repos.InstagramRepo
}

func NewInstagramService(store *selection.Store, posts *repos.InstagramRepo) *InstagramService {
	return &InstagramService{Store: store, Posts: posts}
}

func (s *InstagramService) All(ctx context.Context) ([]domain.InstagramPost, error) {
	return s.Posts.All(ctx)
}

// Featured returns the posts shown on surface in display order.
func (s *InstagramService) Featured(ctx context.Context, surface selection.Surface) ([]domain.InstagramPost, error) {
	ids, err := s.Store.IDs(ctx, surface)
	if err != nil {
		return nil, err
	}
	return s.Posts.Featured(ctx, surface, ids)
}

func (s *InstagramService) Create(ctx context.Context, id, image, link string) (domain.InstagramPost, error) {
	return s.Posts.Create(ctx, id, image, link)
}

// Reorder sets the featured posts of a surface. The storefront layout needs
// exactly the surface's capacity: 3 posts on desktop and 4 on mobile.
func (s *InstagramService) Reorder(ctx context.Context, surface selection.Surface, ids []string) error {
	want, ok := s.Store.Cap(surface)
	if !ok {
		return apperr.New(apperr.CodeValidation, "surface must be 'desktop' or 'mobile'").
			WithDetails(map[string]string{"surface": "must be desktop or mobile"})
	}
	if len(ids) != want || distinct(ids) != want {
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("Expected %d ids for %s", want, surface)).
			WithDetails(map[string]string{"ids": fmt.Sprintf("must contain exactly %d distinct ids", want)})
	}
	_, err := s.Store.Replace(ctx, surface, ids)
	return err
}

func distinct(ids []string) int {
	seen := map[string]struct{}{}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// Patch applies flags and positions to one post in a single transaction, so a
// cap breach on one surface leaves the other untouched.
func (s *InstagramService) Patch(ctx context.Context, id string, patch repos.PostPatch) (domain.InstagramPost, error) {
	if patch.IsEmpty() {
		return domain.InstagramPost{}, apperr.New(apperr.CodeValidation, "No valid fields to update")
	}
	var surfaces []selection.Surface
	if patch.ShowOnDesktop != nil || patch.DesktopPosition != nil {
		surfaces = append(surfaces, selection.SurfaceDesktop)
	}
	if patch.ShowOnMobile != nil || patch.MobilePosition != nil {
		surfaces = append(surfaces, selection.SurfaceMobile)
	}
	var post domain.InstagramPost
	err := s.Store.Update(ctx, surfaces, func(caps map[selection.Surface]int) error {
		var err error
		post, err = s.Posts.ApplyPatch(ctx, id, patch, caps)
		return err
	})
	if err != nil {
		return domain.InstagramPost{}, err
	}
	return post, nil
}

func (s *InstagramService) Delete(ctx context.Context, id string) error {
	if err := s.Posts.Delete(ctx, id); err != nil {
		return err
	}
	s.Store.Sync(ctx)
	return nil
}
