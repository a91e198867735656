package schedule_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dukaanlabs/dukaan/pkg/schedule"
)

func TestRunAndList(t *testing.T) {
	t.Cleanup(schedule.Flush)

	var runs atomic.Int64
	schedule.Every(1).Seconds().Name("refresh").Run(func() { runs.Add(1) })

	names := schedule.List()
	assert.Len(t, names, 1)
	assert.Contains(t, names[0], "refresh")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	schedule.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 2 },
		5*time.Second, 50*time.Millisecond)
}

func TestWithoutOverlapping(t *testing.T) {
	t.Cleanup(schedule.Flush)

	var concurrent, peak atomic.Int64
	schedule.Every(1).Seconds().WithoutOverlapping().Name("slow").Run(func() {
		n := concurrent.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(2500 * time.Millisecond)
		concurrent.Add(-1)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	schedule.Start(ctx)
	<-ctx.Done()

	assert.LessOrEqual(t, peak.Load(), int64(1), "overlap guard must keep one run at a time")
}
