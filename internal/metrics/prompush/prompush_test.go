package prompush

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdata/internal/metrics"
)

type fakePusher struct {
	calls int
	err   error
}

func (f *fakePusher) Push() error {
	f.calls++
	return f.err
}

func TestNewBackendValidates(t *testing.T) {
	t.Parallel()

	_, err := NewBackend("", "http://localhost:9091")
	require.Error(t, err)
	_, err = NewBackend("ecomdata", "not a url")
	require.Error(t, err)

	b, err := NewBackend("ecomdata", "http://localhost:9091")
	require.NoError(t, err)
	require.NotNil(t, b.pusher)
}

func TestCollectorsRecord(t *testing.T) {
	t.Parallel()

	b := newCollectors()
	b.IncCounter(metrics.RowsTotal, 3, metrics.Labels{"kind": "generated"})
	b.IncCounter(metrics.RowsTotal, 2, metrics.Labels{"kind": "generated"})
	b.IncCounter(metrics.CellsRepairedTotal, 7, metrics.Labels{"step": "numeric"})
	b.IncCounter(metrics.CellsRepairedTotal, -1, metrics.Labels{"step": "numeric"})
	b.IncCounter("other_total", 1, nil)
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.2, metrics.Labels{"step": "load", "status": "ok"})

	assert.Equal(t, 5.0, testutil.ToFloat64(b.rows.WithLabelValues("generated")))
	assert.Equal(t, 7.0, testutil.ToFloat64(b.cells.WithLabelValues("numeric")))
	assert.Equal(t, 1, testutil.CollectAndCount(b.duration))

	mfs, err := b.Gatherer().Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 3)
}

func TestFlushPushes(t *testing.T) {
	t.Parallel()

	b := newCollectors()
	require.NoError(t, b.Flush(), "no pusher configured")

	fp := &fakePusher{}
	b.pusher = fp
	require.NoError(t, b.Flush())
	assert.Equal(t, 1, fp.calls)

	fp.err = errors.New("gateway down")
	err := b.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, fp.err)
}
