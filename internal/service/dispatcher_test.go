package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ytdl-ui/ytdl/internal/progress"
	"github.com/ytdl-ui/ytdl/internal/service"
)

func TestDispatcherCoalesces(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	d := service.NewDispatcher(rec)

	for i := range 100 {
		d.StatusUpdate(progress.Record{URL: testURL, Percent: float64(i)})
	}
	d.Completed(0)

	require.NoError(t, d.Run(t.Context()))
	require.Equal(t, []progress.Record{{URL: testURL, Percent: 99}}, rec.Updates())
	require.Equal(t, []int{0}, rec.Completions())
	require.Equal(t, uint64(99), d.Dropped())
	waitDone(t, d.Done())
}

func TestDispatcherCompletion(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	d := service.NewDispatcher()
	d.AddListener(rec)

	d.StatusUpdate(progress.Record{Percent: 10})
	d.Completed(3)
	// neither replaces a pending completion
	d.StatusUpdate(progress.Record{Percent: 20})
	d.Completed(0)

	require.NoError(t, d.Run(t.Context()))
	require.Equal(t, []progress.Record{{Percent: 10}}, rec.Updates())
	require.Equal(t, []int{3}, rec.Completions())
	require.Zero(t, rec.AfterCompletion())

	require.ErrorIs(t, d.Run(t.Context()), service.ErrDispatcherRunning)
}

func TestDispatcherContext(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	d := service.NewDispatcher(rec)
	d.StatusUpdate(progress.Record{Percent: 42})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []progress.Record{{Percent: 42}}, rec.Updates())
	require.Empty(t, rec.Completions())
}

func TestDispatcherRemoveListener(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	gone := &recorder{}
	d := service.NewDispatcher(rec, gone)
	d.RemoveListener(gone)

	d.Completed(1)
	require.NoError(t, d.Run(t.Context()))
	require.Equal(t, []int{1}, rec.Completions())
	require.Empty(t, gone.Completions())
}

func TestDispatcherSupervisor(t *testing.T) {
	t.Parallel()
	ytdlp := fakeYtdlp(t, `
i=0
while [ $i -lt 200 ]; do
	printf '[download] %d.00%% of 1.00MiB at 1.00KiB/s ETA 00:10\n' $((i / 2))
	i=$((i + 1))
done
`)
	sup := newSupervisor(t, testURL, service.Options{Binary: ytdlp})
	rec := &recorder{}
	d := service.NewDispatcher(rec)
	sup.AddListener(d)

	errc := make(chan error, 1)
	go func() { errc <- d.Run(t.Context()) }()

	require.NoError(t, sup.Start(t.Context(), ""))
	waitDone(t, sup.Done())
	waitDone(t, d.Done())
	require.NoError(t, <-errc)

	updates := rec.Updates()
	require.NotEmpty(t, updates)
	require.LessOrEqual(t, len(updates), 201)
	require.Equal(t, uint64(201-len(updates)), d.Dropped())
	require.True(t, updates[len(updates)-1].Completed)
	require.Equal(t, 100.0, updates[len(updates)-1].Percent)
	for i := 1; i < len(updates); i++ {
		require.GreaterOrEqual(t, updates[i].Percent, updates[i-1].Percent)
	}
	require.Equal(t, []int{0}, rec.Completions())
	require.Zero(t, rec.AfterCompletion())
}
