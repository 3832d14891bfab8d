package store

import (
	"context"
	"database/sql"
	"fmt"
)

const upsertPostSQL = `
INSERT INTO posts (
	id, slug, title, html, feature_image, status, visibility,
	created_at, updated_at, published_at, url, excerpt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	slug = excluded.slug,
	title = excluded.title,
	html = excluded.html,
	feature_image = excluded.feature_image,
	status = excluded.status,
	visibility = excluded.visibility,
	created_at = excluded.created_at,
	updated_at = excluded.updated_at,
	published_at = excluded.published_at,
	url = excluded.url,
	excerpt = excluded.excerpt
`

func upsertPostTx(tx *sql.Tx, p Post) error {
	_, err := tx.Exec(upsertPostSQL,
		p.ID, p.Slug, p.Title, p.HTML, p.FeatureImage, p.Status, p.Visibility,
		p.CreatedAt, p.UpdatedAt, p.PublishedAt, p.URL, p.Excerpt,
	)
	return err
}

// UpsertPost inserts or replaces one post row by primary key.
func (s *Store) UpsertPost(ctx context.Context, p Post) error {
	_, err := s.db.ExecContext(ctx, upsertPostSQL,
		p.ID, p.Slug, p.Title, p.HTML, p.FeatureImage, p.Status, p.Visibility,
		p.CreatedAt, p.UpdatedAt, p.PublishedAt, p.URL, p.Excerpt,
	)
	if err != nil {
		return fmt.Errorf("upsert post: %w", translateErr(err))
	}
	s.changed()
	return nil
}

// UpsertPosts inserts or replaces post rows in one transaction.
func (s *Store) UpsertPosts(ctx context.Context, posts []Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range posts {
		if err := upsertPostTx(tx, p); err != nil {
			return fmt.Errorf("upsert post %s: %w", p.ID, translateErr(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// UpdatePost overwrites all scalar fields of an existing post. Returns
// ErrNotFound when no row with that id exists.
func (s *Store) UpdatePost(ctx context.Context, p Post) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE posts SET
		slug = ?, title = ?, html = ?, feature_image = ?, status = ?,
		visibility = ?, created_at = ?, updated_at = ?, published_at = ?,
		url = ?, excerpt = ?
	WHERE id = ?`,
		p.Slug, p.Title, p.HTML, p.FeatureImage, p.Status, p.Visibility,
		p.CreatedAt, p.UpdatedAt, p.PublishedAt, p.URL, p.Excerpt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", translateErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update post %s: %w", p.ID, ErrNotFound)
	}
	s.changed()
	return nil
}

const upsertAuthorSQL = `
INSERT INTO authors (id, name, profile_image, slug) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	profile_image = excluded.profile_image,
	slug = excluded.slug
`

const upsertTagSQL = `
INSERT INTO tags (id, name, slug) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	slug = excluded.slug
`

// UpsertAuthors inserts or replaces author rows in one transaction.
func (s *Store) UpsertAuthors(ctx context.Context, authors []Author) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, a := range authors {
		if _, err := tx.Exec(upsertAuthorSQL, a.ID, a.Name, a.ProfileImage, a.Slug); err != nil {
			return fmt.Errorf("upsert author %s: %w", a.ID, translateErr(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// UpsertTags inserts or replaces tag rows in one transaction.
func (s *Store) UpsertTags(ctx context.Context, tags []Tag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tags {
		if _, err := tx.Exec(upsertTagSQL, t.ID, t.Name, t.Slug); err != nil {
			return fmt.Errorf("upsert tag %s: %w", t.ID, translateErr(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// InsertPostAuthorRefs links a post to authors. Parent rows must already
// exist; a missing parent yields ErrIntegrity. Existing links are kept.
func (s *Store) InsertPostAuthorRefs(ctx context.Context, postID string, authorIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, id := range authorIDs {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO post_author_cross_ref (post_id, author_id) VALUES (?, ?)`,
			postID, id,
		); err != nil {
			return fmt.Errorf("link author %s: %w", id, translateErr(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// InsertPostTagRefs links a post to tags, preserving the given order.
func (s *Store) InsertPostTagRefs(ctx context.Context, postID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, id := range tagIDs {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO post_tag_cross_ref (post_id, tag_id) VALUES (?, ?)`,
			postID, id,
		); err != nil {
			return fmt.Errorf("link tag %s: %w", id, translateErr(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// ClearPostTagRefs removes exactly one post's tag associations, leaving
// other posts untouched. Used by the reconcile step before re-inserting the
// authoritative tag set.
func (s *Store) ClearPostTagRefs(ctx context.Context, postID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM post_tag_cross_ref WHERE post_id = ?`, postID,
	); err != nil {
		return fmt.Errorf("clear post tag refs: %w", err)
	}
	s.changed()
	return nil
}

// ClearPosts wipes the posts table and both cross-reference tables in one
// transaction, so no dangling cross-reference survives a partial failure.
func (s *Store) ClearPosts(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM post_tag_cross_ref`,
		`DELETE FROM post_author_cross_ref`,
		`DELETE FROM posts`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear posts: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// ClearAuthors wipes the authors table and its cross-reference rows.
func (s *Store) ClearAuthors(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_author_cross_ref`); err != nil {
		return fmt.Errorf("clear authors: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM authors`); err != nil {
		return fmt.Errorf("clear authors: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// ClearTags wipes the tags table and its cross-reference rows.
func (s *Store) ClearTags(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_tag_cross_ref`); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tags`); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// CountPosts returns the number of post rows in the replica.
func (s *Store) CountPosts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

// HasPost reports whether a post row exists.
func (s *Store) HasPost(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
