package bun

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"cartflow/internal/ctxkeys"
)

// CoreModel is embedded by every aggregate root and child entity. The
// primary key is an opaque UUID, never an autoincrement integer that
// could leak sequencing information across aggregates. Version backs the
// optimistic-concurrency check on contested rows (orders, shipments,
// payments, stock items, promotions).
type CoreModel struct {
	ID          string       `bun:"id,pk"`
	Version     int64        `bun:"version,notnull,default:0"`
	CreatedAt   time.Time    `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   bun.NullTime `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt   bun.NullTime `bun:"deleted_at,soft_delete,nullzero,default:null"`
	TriggeredBy string       `bun:"triggered_by"` // user id, or "system" — threaded into OrderHistory
}

// Versioned lets BeforeUpdate install the optimistic-concurrency WHERE
// clause generically across every aggregate, regardless of concrete type.
type Versioned interface {
	GetVersion() int64
	TouchVersion()
}

var _ bun.BeforeAppendModelHook = (*CoreModel)(nil)
var _ bun.BeforeUpdateHook = (*CoreModel)(nil)

func (m *CoreModel) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	triggeredBy, _ := ctx.Value(ctxkeys.ContextKeyUserID).(string)
	if triggeredBy == "" {
		triggeredBy = "system"
	}

	switch query.(type) {
	case *bun.InsertQuery:
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.CreatedAt = time.Now()
		m.Version = 1
		m.TriggeredBy = triggeredBy
	case *bun.UpdateQuery:
		m.UpdatedAt = bun.NullTime{Time: time.Now()}
		m.TriggeredBy = triggeredBy
	case *bun.DeleteQuery:
		m.DeletedAt = bun.NullTime{Time: time.Now()}
		m.TriggeredBy = triggeredBy
	default:
		// Do nothing for other query types.
	}
	return nil
}

func (m *CoreModel) TouchVersion() {
	m.Version++
	m.UpdatedAt = bun.NullTime{Time: time.Now()}
}

func (m *CoreModel) GetVersion() int64 {
	return m.Version
}

// BeforeUpdate adds `WHERE version = <loaded version>` to every UPDATE and
// bumps the in-memory version so the next read reflects the new row. The
// repository layer (BaseRepository.Update) is responsible for turning zero
// rows-affected into ErrConcurrencyConflict.
func (m *CoreModel) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	data := query.GetModel().Value()
	if data == nil {
		return nil
	}

	switch v := data.(type) {
	case Versioned:
		query.Where("version = ?", v.GetVersion())
		v.TouchVersion()
	case []Versioned:
		for _, model := range v {
			model.TouchVersion()
		}
	default:
		// Do nothing if not Versioned.
	}

	return nil
}
