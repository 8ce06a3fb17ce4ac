package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	copyErr  error
	execErrs map[string]error // by table_name argument
	copied   int
	inserted []string
}

func (f *fakeDB) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, rows pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	n := 0
	for rows.Next() {
		n++
	}
	f.copied += n
	return int64(n), nil
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	table := args[1].(string)
	if err := f.execErrs[table]; err != nil {
		return pgconn.CommandTag{}, err
	}
	f.inserted = append(f.inserted, table)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "audit_test_total"}, []string{"path"})
}

func entry(table string) *model.AuditEntry {
	return &model.AuditEntry{Actor: "secretaria", TableName: table, RecordID: uuid.New(), Action: model.AuditCreate, CreatedAt: time.Now()}
}

func TestFlushCopiesBatch(t *testing.T) {
	db := &fakeDB{}
	counter := newCounter()
	w := NewAuditWorker(db, nil, counter, zerolog.Nop())

	failed := w.flush(context.Background(), []*model.AuditEntry{entry("assignments"), entry("classrooms")})

	assert.Empty(t, failed)
	assert.Equal(t, 2, db.copied)
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("copy")))
}

func TestFlushFallsBackRowByRow(t *testing.T) {
	db := &fakeDB{
		copyErr: errors.New("copy failed"),
		execErrs: map[string]error{
			"teachers": &pgconn.PgError{Code: "22P02"},
			"subjects": errors.New("connection reset"),
		},
	}
	counter := newCounter()
	w := NewAuditWorker(db, nil, counter, zerolog.Nop())

	subjects := entry("subjects")
	failed := w.flush(context.Background(), []*model.AuditEntry{entry("assignments"), entry("teachers"), subjects})

	require.Len(t, failed, 1)
	assert.Equal(t, subjects, failed[0])
	assert.Equal(t, []string{"assignments"}, db.inserted)
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("row")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("dropped")))
}

func TestDecodeAudit(t *testing.T) {
	raw, err := json.Marshal(model.AuditEntry{TableName: "assignments", RecordID: uuid.New(), Action: model.AuditDelete})
	require.NoError(t, err)

	e, err := decodeAudit(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "system", e.Actor)
	assert.False(t, e.CreatedAt.IsZero())

	_, err = decodeAudit(`{"actor":"x"}`)
	assert.Error(t, err)
	_, err = decodeAudit(`not json`)
	assert.Error(t, err)
}

func TestAuditRowKeepsEmptyPayloadNull(t *testing.T) {
	e := entry("assignments")
	e.NewData = json.RawMessage(`{"id":1}`)

	row := auditRow(e)
	assert.Nil(t, row[4])
	assert.Equal(t, `{"id":1}`, row[5])
	assert.Equal(t, "create", row[3])
}

type fakeRunner struct {
	ran []uuid.UUID
	err error
}

func (f *fakeRunner) RunJob(_ context.Context, id uuid.UUID) error {
	f.ran = append(f.ran, id)
	return f.err
}

func TestImportWorkerRun(t *testing.T) {
	runner := &fakeRunner{}
	w := NewImportWorker(runner, nil, zerolog.Nop())

	id := uuid.New()
	w.run(id.String())
	w.run("not-a-uuid")

	assert.Equal(t, []uuid.UUID{id}, runner.ran)

	runner.err = errors.New("boom")
	w.run(id.String())
	assert.Len(t, runner.ran, 2)
}
