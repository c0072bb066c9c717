// Package events appends an audit trail of post lifecycle changes to the
// workspace journal. The JSON post collection stays the source of truth;
// the journal only records what happened and when.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event types recorded by the engine.
const (
	TypeDrafted        = "post.drafted"
	TypeContentUpdated = "post.content.updated"
	TypeHashtags       = "post.hashtags.attached"
	TypeScheduled      = "post.scheduled"
	TypePublished      = "post.published"
	TypeToneChanged    = "config.tone.changed"
)

type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type EventPayload map[string]any

// Append writes one event inside the caller's transaction.
func (w Writer) Append(ctx context.Context, tx *sql.Tx, evtType, postID, actor string, payload EventPayload) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(ts,type,post_id,actor,payload_json) VALUES (?,?,?,?,?)`,
		ts, evtType, nullable(postID), actor, string(data))
	return err
}

// Record writes one event in its own transaction.
func (w Writer) Record(ctx context.Context, evtType, postID, actor string, payload EventPayload) error {
	tx, err := w.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := w.Append(ctx, tx, evtType, postID, actor, payload); err != nil {
		return err
	}
	return tx.Commit()
}

// Event is one journal row as read back.
type Event struct {
	ID      int64
	TS      string
	Type    string
	PostID  string
	Actor   string
	Payload string
}

// Tail returns the most recent events, newest first.
func Tail(ctx context.Context, db *sql.DB, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, ts, type, COALESCE(post_id,''), actor, payload_json FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.PostID, &e.Actor, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
