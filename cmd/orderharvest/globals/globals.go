package globals

import (
	"context"
	"database/sql"
	"orderharvest/internal/components/chrono"
	"orderharvest/internal/components/telemetry"
	"orderharvest/internal/db"
)

type keyType int

const key keyType = 0

// Value is everything the subcommands share, it is built once before any
// subcommand runs.
type Value struct {
	Config Config
	Locale string
	DB     *sql.DB
	Qry    *db.Queries
	MakeTx db.MakeTx
	Clock  chrono.API
	Tel    telemetry.API

	closers []func(ctx context.Context) error
}

// OnClose registers fn to run when the command finishes.
func (v *Value) OnClose(fn func(ctx context.Context) error) {
	v.closers = append(v.closers, fn)
}

// Close runs the registered closers in reverse order and returns the first
// error.
func (v *Value) Close(ctx context.Context) error {
	var first error
	for i := len(v.closers) - 1; i >= 0; i-- {
		err := v.closers[i](ctx)
		if err != nil && first == nil {
			first = err
		}
	}
	v.closers = nil
	return first
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key).(*Value)
}
