// Package storage persists registered edge definitions and API keys via
// uptrace/bun, so a transmuted server process can rehydrate its EdgeTable
// across restarts and authenticate callers.
package storage

import (
	"time"

	"github.com/uptrace/bun"
)

// EdgeModel is the persisted definition of one transmute.Edge: its cost,
// category keys, tag sets, and a named reference into a FunctionRegistry
// resolved at rehydration time. The core's edge function itself (a Go
// closure) is never serialized — only a name identifying which
// process-local function implements it.
type EdgeModel struct {
	bun.BaseModel `bun:"table:transmute_edges,alias:e"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull,unique" json:"name"`
	Cost      float64   `bun:"cost,notnull" json:"cost"`
	CatIn     string    `bun:"cat_in,notnull" json:"cat_in"`
	CatOut    string    `bun:"cat_out,notnull" json:"cat_out"`
	ReqIn     []string  `bun:"req_in,array" json:"req_in,omitempty"`
	ProvOut   []string  `bun:"prov_out,array" json:"prov_out,omitempty"`
	FuncRef   string    `bun:"func_ref,notnull" json:"func_ref"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (EdgeModel) TableName() string { return "transmute_edges" }

// BeforeAppendModel sets CreatedAt to the current time when it is zero.
// Its signature is not bun's BeforeAppendModelHook, so bun does not call
// it on insert; created_at is filled by the column default instead.
func (e *EdgeModel) BeforeAppendModel(ctx any) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}

// APIKeyModel is a bcrypt-hashed bearer credential used by internal/httpapi's
// auth middleware. The plaintext secret is shown to the caller exactly once,
// at creation time, and never stored.
type APIKeyModel struct {
	bun.BaseModel `bun:"table:transmute_api_keys,alias:k"`

	ID        string     `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Name      string     `bun:"name,notnull,unique" json:"name"`
	KeyPrefix string     `bun:"key_prefix,notnull" json:"key_prefix"`
	KeyHash   string     `bun:"key_hash,notnull" json:"-"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	RevokedAt *time.Time `bun:"revoked_at" json:"revoked_at,omitempty"`
}

func (APIKeyModel) TableName() string { return "transmute_api_keys" }

func (k *APIKeyModel) BeforeAppendModel(ctx any) error {
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	return nil
}

// IsRevoked reports whether the key has been revoked.
func (k *APIKeyModel) IsRevoked() bool { return k.RevokedAt != nil }

// EventModel is the audit-log row written by internal/observer's
// DatabaseObserver for every transmute.Event.
type EventModel struct {
	bun.BaseModel `bun:"table:transmute_events,alias:ev"`

	ID          int64          `bun:"id,pk,autoincrement" json:"id"`
	ExecutionID string         `bun:"execution_id,notnull" json:"execution_id"`
	EventType   string         `bun:"event_type,notnull" json:"event_type"`
	SrcCat      string         `bun:"src_cat" json:"src_cat,omitempty"`
	DstCat      string         `bun:"dst_cat" json:"dst_cat,omitempty"`
	EdgeName    string         `bun:"edge_name" json:"edge_name,omitempty"`
	Attempt     int            `bun:"attempt" json:"attempt,omitempty"`
	Err         string         `bun:"error" json:"error,omitempty"`
	Metadata    map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (EventModel) TableName() string { return "transmute_events" }
