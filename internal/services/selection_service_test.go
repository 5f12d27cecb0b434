package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seenstudio/internal/apperr"
	"seenstudio/internal/repos"
	"seenstudio/internal/selection"
)

func TestHomeDiscoverReplaceAndProducts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	sel, err := h.home.Replace(ctx, []string{"prd-leather-belt", "prd-silk-slip"})
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, "prd-leather-belt", sel[0].ProductID)
	assert.Equal(t, 0, sel[0].Position)
	assert.Equal(t, 1, sel[1].Position)

	products, err := h.home.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Leather Waist Belt", products[0].Name)
}

func TestHomeDiscoverRejectsMoreThanFour(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.home.Replace(ctx, []string{"prd-silk-slip", "prd-linen-shirt", "prd-wide-trouser", "prd-knit-set", "prd-leather-belt"})
	require.True(t, apperr.IsCode(err, apperr.CodeTooManySelected))

	sel, err := h.home.Selection(ctx)
	require.NoError(t, err)
	assert.Len(t, sel, 4, "previous selection kept")
}

func TestHomeDiscoverUnknownProduct(t *testing.T) {
	h := newHarness(t)
	_, err := h.home.Replace(context.Background(), []string{"nope"})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestHomeDiscoverSkipsInactiveProducts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.catalog.DeleteProduct(ctx, "prd-linen-shirt"))
	products, err := h.home.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
	for _, p := range products {
		assert.NotEqual(t, "prd-linen-shirt", p.ID)
	}
}

func TestInstagramReorderNeedsExactCount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.instagram.Reorder(ctx, selection.SurfaceDesktop, []string{"ig-1", "ig-2"})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	err = h.instagram.Reorder(ctx, selection.SurfaceDesktop, []string{"ig-1", "ig-1", "ig-2"})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	err = h.instagram.Reorder(ctx, selection.Surface("tablet"), []string{"ig-1"})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	require.NoError(t, h.instagram.Reorder(ctx, selection.SurfaceDesktop, []string{"ig-4", "ig-2", "ig-1"}))
	featured, err := h.instagram.Featured(ctx, selection.SurfaceDesktop)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	assert.Equal(t, "ig-4", featured[0].ID)
	assert.Equal(t, "ig-1", featured[2].ID)

	mobile, err := h.instagram.Featured(ctx, selection.SurfaceMobile)
	require.NoError(t, err)
	assert.Len(t, mobile, 4, "mobile untouched")
}

func TestInstagramPatchRespectsCap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	on := true
	_, err := h.instagram.Patch(ctx, "ig-4", repos.PostPatch{ShowOnDesktop: &on})
	assert.True(t, apperr.IsCode(err, apperr.CodeTooManySelected))

	off := false
	post, err := h.instagram.Patch(ctx, "ig-1", repos.PostPatch{ShowOnDesktop: &off})
	require.NoError(t, err)
	assert.False(t, post.ShowOnDesktop)
	assert.Nil(t, post.DesktopPosition)

	post, err = h.instagram.Patch(ctx, "ig-4", repos.PostPatch{ShowOnDesktop: &on})
	require.NoError(t, err)
	assert.True(t, post.ShowOnDesktop)

	ids, err := h.instagram.Store.IDs(ctx, selection.SurfaceDesktop)
	require.NoError(t, err)
	assert.Equal(t, []string{"ig-2", "ig-3", "ig-4"}, ids)
}

func TestInstagramPatchValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.instagram.Patch(ctx, "ig-1", repos.PostPatch{})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	on := true
	_, err = h.instagram.Patch(ctx, "nope", repos.PostPatch{ShowOnMobile: &on})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestInstagramPatchPositionOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	post, err := h.instagram.Patch(ctx, "ig-1", repos.PostPatch{MobilePosition: &repos.OptionalInt{Value: 9}})
	require.NoError(t, err)
	require.NotNil(t, post.MobilePosition)
	assert.Equal(t, 3, *post.MobilePosition, "clamped to the last slot")

	ids, err := h.instagram.Store.IDs(ctx, selection.SurfaceMobile)
	require.NoError(t, err)
	assert.Equal(t, []string{"ig-2", "ig-3", "ig-4", "ig-1"}, ids)
}

func TestInstagramPatchIsAllOrNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.instagram.Create(ctx, "ig-5", "/images/ig-5.jpg", "https://instagram.com/p/5")
	require.NoError(t, err)
	off := false
	_, err = h.instagram.Patch(ctx, "ig-3", repos.PostPatch{ShowOnDesktop: &off})
	require.NoError(t, err)

	on := true
	_, err = h.instagram.Patch(ctx, "ig-5", repos.PostPatch{ShowOnDesktop: &on, ShowOnMobile: &on})
	assert.True(t, apperr.IsCode(err, apperr.CodeTooManySelected))

	post, err := h.instagram.Posts.Get(ctx, "ig-5")
	require.NoError(t, err)
	assert.False(t, post.ShowOnDesktop)
	assert.Nil(t, post.DesktopPosition)
	ids, err := h.instagram.Store.IDs(ctx, selection.SurfaceDesktop)
	require.NoError(t, err)
	assert.Equal(t, []string{"ig-1", "ig-2"}, ids)
}

func TestInstagramPositionsStayContiguous(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	off := false
	_, err := h.instagram.Patch(ctx, "ig-2", repos.PostPatch{ShowOnMobile: &off})
	require.NoError(t, err)
	require.NoError(t, h.instagram.Delete(ctx, "ig-1"))

	posts, err := h.instagram.Featured(ctx, selection.SurfaceMobile)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for i, p := range posts {
		require.NotNil(t, p.MobilePosition)
		assert.Equal(t, i, *p.MobilePosition, p.ID)
	}

	on := true
	post, err := h.instagram.Patch(ctx, "ig-2", repos.PostPatch{ShowOnMobile: &on, MobilePosition: &repos.OptionalInt{Value: 0}})
	require.NoError(t, err)
	require.NotNil(t, post.MobilePosition)
	assert.Equal(t, 0, *post.MobilePosition)
	ids, err := h.instagram.Store.IDs(ctx, selection.SurfaceMobile)
	require.NoError(t, err)
	assert.Equal(t, []string{"ig-2", "ig-3", "ig-4"}, ids)
}

func TestInstagramCreateAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	post, err := h.instagram.Create(ctx, "ig-5", "/images/instagram/ig-5.jpg", "https://instagram.com/p/ig-5")
	require.NoError(t, err)
	assert.Equal(t, 4, post.Position)
	assert.False(t, post.ShowOnDesktop)

	require.NoError(t, h.instagram.Delete(ctx, "ig-1"))
	assert.True(t, apperr.IsCode(h.instagram.Delete(ctx, "ig-1"), apperr.CodeNotFound))

	ids, err := h.instagram.Store.IDs(ctx, selection.SurfaceDesktop)
	require.NoError(t, err)
	assert.Equal(t, []string{"ig-2", "ig-3"}, ids)

	all, err := h.instagram.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
