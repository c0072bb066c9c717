package store

import (
	"encoding/json"
	"sort"

	"postline/internal/domain"
)

// Collection maps post ID to its stored record. It is the whole-file unit of
// persistence; there are no partial updates at this layer.
type Collection map[string]*Record

// Record wraps a post together with any fields written by newer versions of
// the file format. Unknown fields round-trip unchanged so an older binary
// never strips data a newer one wrote.
type Record struct {
	Post  domain.Post
	extra map[string]json.RawMessage
}

// knownPostFields mirrors the json tags of domain.Post. Anything else found
// in a record is carried in extra.
var knownPostFields = []string{
	"id", "topic", "tone", "content", "hashtags", "status",
	"scheduled_time", "published_time", "remote_id", "created_at", "updated_at",
}

func (r *Record) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.Post); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownPostFields {
		delete(all, k)
	}
	if len(all) > 0 {
		r.extra = all
	}
	return nil
}

func (r *Record) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Post)
	if err != nil {
		return nil, err
	}
	if len(r.extra) == 0 {
		return data, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Put upserts a post, preserving the extra fields of an existing record.
func (c Collection) Put(p domain.Post) {
	if rec, ok := c[p.ID]; ok {
		rec.Post = p
		return
	}
	c[p.ID] = &Record{Post: p}
}

// Posts returns all posts in creation order (created_at, then ID for stability).
func (c Collection) Posts() []domain.Post {
	out := make([]domain.Post, 0, len(c))
	for _, rec := range c {
		out = append(out, rec.Post)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
