// Package repo exposes the post collection behind the repository contract:
// upsert, lookup, and status listing. There is no delete; published is the
// terminal marker and posts stay in the collection for audit.
package repo

import (
	"context"

	"postline/internal/domain"
	"postline/internal/store"
)

type Repo struct {
	Store *store.Store
}

// Save upserts a post by ID under the exclusive collection lock.
func (r Repo) Save(ctx context.Context, p domain.Post) error {
	return r.Store.MutatePosts(ctx, func(col store.Collection) error {
		col.Put(p)
		return nil
	})
}

// Get returns the post with the given ID.
func (r Repo) Get(ctx context.Context, id string) (domain.Post, error) {
	col, err := r.Store.LoadPosts(ctx)
	if err != nil {
		return domain.Post{}, err
	}
	rec, ok := col[id]
	if !ok {
		return domain.Post{}, domain.Errorf(domain.KindNotFound, "post %q not found", id)
	}
	return rec.Post, nil
}

// ListByStatus returns posts with the given status in creation order.
func (r Repo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Post, error) {
	col, err := r.Store.LoadPosts(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Post
	for _, p := range col.Posts() {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListAll returns every post in creation order.
func (r Repo) ListAll(ctx context.Context) ([]domain.Post, error) {
	col, err := r.Store.LoadPosts(ctx)
	if err != nil {
		return nil, err
	}
	return col.Posts(), nil
}

// Update runs fn against one post inside a single locked load-modify-persist
// cycle. If fn returns an error the collection is left untouched, so a failed
// transition never partially applies.
func (r Repo) Update(ctx context.Context, id string, fn func(*domain.Post) error) (domain.Post, error) {
	var updated domain.Post
	err := r.Store.MutatePosts(ctx, func(col store.Collection) error {
		rec, ok := col[id]
		if !ok {
			return domain.Errorf(domain.KindNotFound, "post %q not found", id)
		}
		p := rec.Post
		if err := fn(&p); err != nil {
			return err
		}
		rec.Post = p
		updated = p
		return nil
	})
	if err != nil {
		return domain.Post{}, err
	}
	return updated, nil
}
