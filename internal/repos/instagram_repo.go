package repos

import (
	"context"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
	"seenstudio/internal/selection"
)

// InstagramRepo stores posts and their per-surface featured positions.
type InstagramRepo struct{ db *sqlx.DB }

func NewInstagramRepo(db *sqlx.DB) *InstagramRepo { return &InstagramRepo{db: db} }

const postCols = `id, image, link, position, show_on_desktop, desktop_position, show_on_mobile, mobile_position, created_at`

type surfaceCols struct{ flag, pos string }

func columnsFor(s selection.Surface) (surfaceCols, error) {
	switch s {
	case selection.SurfaceDesktop:
		return surfaceCols{"show_on_desktop", "desktop_position"}, nil
	case selection.SurfaceMobile:
		return surfaceCols{"show_on_mobile", "mobile_position"}, nil
	}
	return surfaceCols{}, apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown surface %q", s))
}

// All returns every post in gallery order.
func (r *InstagramRepo) All(ctx context.Context) ([]domain.InstagramPost, error) {
	out := []domain.InstagramPost{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+postCols+` FROM instagram_posts ORDER BY position ASC, created_at ASC`)
	return out, err
}

func (r *InstagramRepo) Get(ctx context.Context, id string) (domain.InstagramPost, error) {
	var p domain.InstagramPost
	if err := r.db.GetContext(ctx, &p, `SELECT `+postCols+` FROM instagram_posts WHERE id = ?`, id); err != nil {
		return domain.InstagramPost{}, notFound(err, "Post")
	}
	return p, nil
}

// Create appends a post after the last gallery position. Reusing an id is CONFLICT.
func (r *InstagramRepo) Create(ctx context.Context, id, image, link string) (domain.InstagramPost, error) {
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM instagram_posts WHERE id = ?`, id); err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.CodeConflict, "Post already exists")
		}
		var next int
		if err := tx.GetContext(ctx, &next, `SELECT COALESCE(MAX(position) + 1, 0) FROM instagram_posts`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
		  INSERT INTO instagram_posts(id, image, link, position, created_at)
		  VALUES (?, ?, ?, ?, ?)`, id, image, link, next, now())
		return err
	})
	if err != nil {
		return domain.InstagramPost{}, err
	}
	return r.Get(ctx, id)
}

// PostPatch carries the fields of a partial update. Nil means "leave as is";
// a Set position with Null true clears it.
type PostPatch struct {
	ShowOnDesktop   *bool
	DesktopPosition *OptionalInt
	ShowOnMobile    *bool
	MobilePosition  *OptionalInt
}

type OptionalInt struct {
	Value int
	Null  bool
}

func (p PostPatch) IsEmpty() bool {
	return p.ShowOnDesktop == nil && p.DesktopPosition == nil && p.ShowOnMobile == nil && p.MobilePosition == nil
}

// ApplyPatch applies patch to one post in a single transaction. Enabling a
// surface fails with TOO_MANY_SELECTED once limits[surface] posts are featured
// there. An explicit position moves a featured post to that index. Positions of
// every touched surface are renumbered 0..n-1.
func (r *InstagramRepo) ApplyPatch(ctx context.Context, id string, patch PostPatch, limits map[selection.Surface]int) (domain.InstagramPost, error) {
	if patch.IsEmpty() {
		return domain.InstagramPost{}, apperr.New(apperr.CodeValidation, "No valid fields to update")
	}
	changes := []struct {
		surface selection.Surface
		flag    *bool
		pos     *OptionalInt
	}{
		{selection.SurfaceDesktop, patch.ShowOnDesktop, patch.DesktopPosition},
		{selection.SurfaceMobile, patch.ShowOnMobile, patch.MobilePosition},
	}
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var one int
		if err := tx.GetContext(ctx, &one, `SELECT 1 FROM instagram_posts WHERE id = ?`, id); err != nil {
			return notFound(err, "Post")
		}
		for _, ch := range changes {
			if ch.flag == nil && ch.pos == nil {
				continue
			}
			cols, err := columnsFor(ch.surface)
			if err != nil {
				return err
			}
			if ch.flag != nil {
				if err := setMembership(ctx, tx, cols, ch.surface, id, *ch.flag, limits[ch.surface]); err != nil {
					return err
				}
			}
			at := -1
			if ch.pos != nil {
				if _, err := tx.ExecContext(ctx, `UPDATE instagram_posts SET `+cols.pos+` = ? WHERE id = ?`, optionalArg(*ch.pos), id); err != nil {
					return err
				}
				if !ch.pos.Null {
					at = ch.pos.Value
				}
			}
			if err := renumber(ctx, tx, cols, id, at); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.InstagramPost{}, err
	}
	return r.Get(ctx, id)
}

func setMembership(ctx context.Context, tx *sqlx.Tx, cols surfaceCols, surface selection.Surface, id string, enabled bool, limit int) error {
	if !enabled {
		_, err := tx.ExecContext(ctx, `UPDATE instagram_posts SET `+cols.flag+` = 0, `+cols.pos+` = NULL WHERE id = ?`, id)
		return err
	}
	var flagged int
	if err := tx.GetContext(ctx, &flagged, `SELECT `+cols.flag+` FROM instagram_posts WHERE id = ?`, id); err != nil {
		return notFound(err, "Post")
	}
	if flagged == 1 {
		return nil
	}
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM instagram_posts WHERE `+cols.flag+` = 1`); err != nil {
		return err
	}
	if count >= limit {
		return apperr.New(apperr.CodeTooManySelected,
			fmt.Sprintf("You can only feature up to %d posts on %s", limit, surface)).
			WithDetails(map[string]int{"max": limit})
	}
	_, err := tx.ExecContext(ctx, `UPDATE instagram_posts SET `+cols.flag+` = 1, `+cols.pos+` = ? WHERE id = ?`, count, id)
	return err
}

// renumber rewrites the positions of the featured posts of one surface to
// 0..n-1 in their current order. With at >= 0, id is moved to index at.
func renumber(ctx context.Context, tx *sqlx.Tx, cols surfaceCols, id string, at int) error {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, `
	  SELECT id FROM instagram_posts
	  WHERE `+cols.flag+` = 1
	  ORDER BY `+cols.pos+` IS NULL, `+cols.pos+` ASC, position ASC`); err != nil {
		return err
	}
	if at >= 0 {
		if i := slices.Index(ids, id); i >= 0 {
			ids = slices.Delete(ids, i, i+1)
			ids = slices.Insert(ids, min(at, len(ids)), id)
		}
	}
	for i, pid := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE instagram_posts SET `+cols.pos+` = ? WHERE id = ?`, i, pid); err != nil {
			return err
		}
	}
	return nil
}

func optionalArg(o OptionalInt) any {
	if o.Null {
		return nil
	}
	return o.Value
}

// Delete removes a post and closes the gaps it leaves in the surface positions.
func (r *InstagramRepo) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM instagram_posts WHERE id = ?`, id)
		if err := mustAffect(res, err, "Post"); err != nil {
			return err
		}
		for _, surface := range []selection.Surface{selection.SurfaceDesktop, selection.SurfaceMobile} {
			cols, _ := columnsFor(surface)
			if err := renumber(ctx, tx, cols, id, -1); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the post ids featured on surface ordered by their surface position.
func (r *InstagramRepo) List(ctx context.Context, surface selection.Surface) ([]string, error) {
	cols, err := columnsFor(surface)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	err = r.db.SelectContext(ctx, &ids, `
	  SELECT id FROM instagram_posts
	  WHERE `+cols.flag+` = 1
	  ORDER BY `+cols.pos+` IS NULL, `+cols.pos+` ASC, position ASC`)
	return ids, err
}

// Featured returns the posts of surface in display order.
func (r *InstagramRepo) Featured(ctx context.Context, surface selection.Surface, ids []string) ([]domain.InstagramPost, error) {
	if _, err := columnsFor(surface); err != nil {
		return nil, err
	}
	out := []domain.InstagramPost{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+postCols+` FROM instagram_posts WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.InstagramPost
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	byID := make(map[string]domain.InstagramPost, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Replace unflags every post on surface and flags ids at positions 0..n-1.
func (r *InstagramRepo) Replace(ctx context.Context, surface selection.Surface, ids []string) error {
	cols, err := columnsFor(surface)
	if err != nil {
		return err
	}
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := requireIDs(ctx, tx, "instagram_posts", ids); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE instagram_posts SET `+cols.flag+` = 0, `+cols.pos+` = NULL`); err != nil {
			return err
		}
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE instagram_posts SET `+cols.flag+` = 1, `+cols.pos+` = ? WHERE id = ?`, i, id); err != nil {
				return err
			}
		}
		return nil
	})
}
