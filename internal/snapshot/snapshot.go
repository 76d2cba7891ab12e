// Package snapshot implements named durable locations that hold the
// serialized order history between runs.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"orderharvest/internal/components/assert"
	"orderharvest/internal/components/chrono"
	"orderharvest/internal/components/telemetry"
	"orderharvest/internal/db"
	"sync"
	"time"
)

const (
	report_db_query = "db.query"
	report_write    = "slot.write"
)

// Slot is a single named snapshot. Read reports found=false when nothing has
// been written yet, Write replaces the previous payload as a whole.
type Slot interface {
	Name() string
	Read(ctx context.Context) (payload []byte, found bool, err error)
	Write(ctx context.Context, payload []byte, count int) error
	Delete(ctx context.Context) error
}

type Info struct {
	Slot       string
	OrderCount int64
	SavedAt    time.Time
}

// DBSlot stores a slot as a row of the snapshot table.
type DBSlot struct {
	name   string
	db     *db.Queries
	makeTx db.MakeTx
	time   chrono.API
	tel    telemetry.API
}

func NewDBSlot(
	name string,
	qry *db.Queries,
	makeTx db.MakeTx,
	time chrono.API,
	tel telemetry.API,
) DBSlot {
	assert.NotEmptyStr(name)
	assert.NotNil(qry)
	assert.NotNil(makeTx)
	assert.NotNil(time)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("snapshot", tel)

	return DBSlot{
		name:   name,
		db:     qry,
		makeTx: makeTx,
		time:   time,
		tel:    tel,
	}
}

func (s DBSlot) Name() string {
	return s.name
}

func (s DBSlot) Read(ctx context.Context) ([]byte, bool, error) {
	row, err := s.db.GetSnapshot(ctx, s.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetSnapshot", s.name)
		return nil, false, err
	}
	return row.Payload, true, nil
}

func (s DBSlot) Write(ctx context.Context, payload []byte, count int) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	err = tx.UpsertSnapshot(ctx, db.UpsertSnapshotParams{
		Slot:       s.name,
		Payload:    payload,
		OrderCount: int64(count),
		SavedAt:    s.time.Now().Unix(),
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "UpsertSnapshot", s.name)
		return err
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_write, fmt.Errorf("commit: %w", err), s.name)
		return err
	}
	s.tel.ReportCount(report_write, int64(count))
	return nil
}

func (s DBSlot) Delete(ctx context.Context) error {
	_, err := s.db.DeleteSnapshot(ctx, s.name)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "DeleteSnapshot", s.name)
		return err
	}
	return nil
}

// List describes every slot that currently holds a snapshot.
func List(ctx context.Context, qry *db.Queries) ([]Info, error) {
	rows, err := qry.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Info, len(rows))
	for i, r := range rows {
		out[i] = Info{
			Slot:       r.Slot,
			OrderCount: r.OrderCount,
			SavedAt:    time.Unix(r.SavedAt, 0),
		}
	}
	return out, nil
}

// MemorySlot keeps its payload in memory, it backs dry runs and tests.
type MemorySlot struct {
	name    string
	mutex   sync.Mutex
	payload []byte
	found   bool
	writes  int
}

func NewMemorySlot(name string) *MemorySlot {
	return &MemorySlot{name: name}
}

func (m *MemorySlot) Name() string {
	return m.name
}

func (m *MemorySlot) Read(context.Context) ([]byte, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if !m.found {
		return nil, false, nil
	}
	return append([]byte{}, m.payload...), true, nil
}

func (m *MemorySlot) Write(_ context.Context, payload []byte, _ int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.payload = append([]byte{}, payload...)
	m.found = true
	m.writes++
	return nil
}

func (m *MemorySlot) Delete(context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.payload = nil
	m.found = false
	return nil
}

// Writes is the number of successful writes so far.
func (m *MemorySlot) Writes() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.writes
}

// Seed sets the payload without counting it as a write.
func (m *MemorySlot) Seed(payload []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.payload = append([]byte{}, payload...)
	m.found = true
}
