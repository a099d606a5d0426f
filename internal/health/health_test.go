package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestCheckBasic(t *testing.T) {
	ok := NewHealthChecker(fakePinger{}).CheckBasic(context.Background())
	assert.Equal(t, "healthy", ok.Status)
	assert.Equal(t, "healthy", ok.Database.Status)

	down := NewHealthChecker(fakePinger{err: errors.New("connection refused")}).CheckBasic(context.Background())
	assert.Equal(t, "unhealthy", down.Status)
}

func TestCheckDetailedReportsMissingCache(t *testing.T) {
	d := NewHealthChecker(fakePinger{}).CheckDetailed(context.Background())
	assert.Equal(t, "healthy", d.Status)
	assert.Equal(t, "unavailable", d.Cache)
	assert.GreaterOrEqual(t, d.Host.MemoryPercent, 0.0)
}
