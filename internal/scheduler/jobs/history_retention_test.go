package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/fiscalrisk/internal/history"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

type fakePurger struct {
	age     time.Duration
	removed int64
	err     error
}

func (f *fakePurger) PurgeOlderThan(_ context.Context, age time.Duration) (int64, error) {
	f.age = age
	return f.removed, f.err
}

func TestHistoryRetentionJob_Run(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"purges", nil, false},
		{"not configured is a no-op", history.ErrNotConfigured, false},
		{"database error", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePurger{removed: 3, err: tt.err}
			job := NewHistoryRetentionJob(p, 48*time.Hour, "0 30 3 * * *", logger.Nop())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 48*time.Hour, p.age)
		})
	}
}

func TestHistoryRetentionJob_Metadata(t *testing.T) {
	job := NewHistoryRetentionJob(&fakePurger{}, time.Hour, "0 */5 * * * *", logger.Nop())
	assert.Equal(t, "history_retention", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())
}
