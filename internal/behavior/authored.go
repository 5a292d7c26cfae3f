package behavior

import (
	"time"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// AuthoredColumns names the columns Authored maintains. An empty name
// disables that part of the behavior.
type AuthoredColumns struct {
	Created   string `mapstructure:"created" yaml:"created,omitempty"`
	CreatedBy string `mapstructure:"created_by" yaml:"created_by,omitempty"`
	Updated   string `mapstructure:"updated" yaml:"updated,omitempty"`
	UpdatedBy string `mapstructure:"updated_by" yaml:"updated_by,omitempty"`
}

// DefaultAuthoredColumns returns created, creator_id, updated and updator_id.
func DefaultAuthoredColumns() AuthoredColumns {
	return AuthoredColumns{
		Created:   "created",
		CreatedBy: "creator_id",
		Updated:   "updated",
		UpdatedBy: "updator_id",
	}
}

// Authored stamps audit columns. The creation time is only filled when
// empty; the update time is overwritten on every insert and update. The
// identity columns are left alone when nobody is authenticated.
type Authored struct {
	cols     AuthoredColumns
	identity Identity
	now      func() time.Time
}

// AuthoredOption configures Authored.
type AuthoredOption func(*Authored)

// WithIdentity sets the identity provider for the *_by columns.
func WithIdentity(id Identity) AuthoredOption {
	return func(a *Authored) {
		a.identity = id
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AuthoredOption {
	return func(a *Authored) {
		a.now = now
	}
}

// NewAuthored creates an Authored behavior for cols.
func NewAuthored(cols AuthoredColumns, opts ...AuthoredOption) *Authored {
	a := &Authored{cols: cols, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup registers the stamping hooks.
func (a *Authored) Setup(r *types.Record) {
	if a.cols.Created != "" {
		r.On(types.EventBeforeInsert, a.updateCreated)
	}
	if a.cols.CreatedBy != "" {
		r.On(types.EventBeforeInsert, a.updateCreatedBy)
	}
	if a.cols.Updated != "" {
		r.On(types.EventBeforeUpdate, a.updateUpdated)
		r.On(types.EventBeforeInsert, a.updateUpdated)
	}
	if a.cols.UpdatedBy != "" {
		r.On(types.EventBeforeUpdate, a.updateUpdatedBy)
		r.On(types.EventBeforeInsert, a.updateUpdatedBy)
	}
}

func (a *Authored) timestamp() string {
	return a.now().UTC().Format(types.DateTimeFormat)
}

func (a *Authored) updateCreated(r *types.Record) error {
	v, err := r.Get(a.cols.Created)
	if err != nil {
		return err
	}
	if !types.IsEmpty(v) {
		return nil
	}
	return r.Set(a.cols.Created, a.timestamp())
}

func (a *Authored) updateUpdated(r *types.Record) error {
	return r.Set(a.cols.Updated, a.timestamp())
}

func (a *Authored) updateCreatedBy(r *types.Record) error {
	v, err := r.Get(a.cols.CreatedBy)
	if err != nil {
		return err
	}
	if !types.IsEmpty(v) || !a.authenticated() {
		return nil
	}
	return r.Set(a.cols.CreatedBy, a.identity.CurrentIdentity())
}

func (a *Authored) updateUpdatedBy(r *types.Record) error {
	if !a.authenticated() {
		return nil
	}
	return r.Set(a.cols.UpdatedBy, a.identity.CurrentIdentity())
}

func (a *Authored) authenticated() bool {
	return a.identity != nil && a.identity.IsAuthenticated()
}
