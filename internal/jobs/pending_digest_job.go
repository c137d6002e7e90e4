package jobs

import (
	"context"
	"time"

	"github.com/meatlab/lims-api/internal/domain"
	"go.uber.org/zap"
)

// PendingDigestJobName is the name of the overdue pending sample digest job
const PendingDigestJobName = "pending_digest"

// maxDigestCodes caps the sample codes listed in one digest message
const maxDigestCodes = 20

// PendingSampleSource lists pending samples received before a cutoff
type PendingSampleSource interface {
	ListPendingReceivedBefore(ctx context.Context, cutoff time.Time) ([]domain.Sample, error)
}

// DigestNotifier delivers the digest text to the lab admins
type DigestNotifier interface {
	NotifyPending(ctx context.Context, count int, days int, codes []string) error
}

// DigestRecorder records the size of the last digest
type DigestRecorder interface {
	SetOverduePending(n int)
}

// PendingDigestJob reports samples that have waited too long for results.
type PendingDigestJob struct {
	samples  PendingSampleSource
	notifier DigestNotifier
	recorder DigestRecorder
	logger   *zap.Logger
	maxAge   time.Duration
	timeout  time.Duration
	now      func() time.Time
}

// NewPendingDigestJob creates the digest job. notifier and recorder may be nil.
func NewPendingDigestJob(samples PendingSampleSource, notifier DigestNotifier, recorder DigestRecorder, logger *zap.Logger, maxAge, timeout time.Duration) *PendingDigestJob {
	return &PendingDigestJob{
		samples:  samples,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
		maxAge:   maxAge,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Run executes one digest pass. It is called by the scheduler.
func (j *PendingDigestJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("pending digest job failed", zap.Error(err))
	}
}

// RunOnce counts overdue samples, logs them and notifies when any exist.
// It returns the number of overdue samples.
func (j *PendingDigestJob) RunOnce(ctx context.Context) (int, error) {
	start := j.now()
	cutoff := start.Add(-j.maxAge)

	samples, err := j.samples.ListPendingReceivedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if j.recorder != nil {
		j.recorder.SetOverduePending(len(samples))
	}

	if len(samples) == 0 {
		j.logger.Info("no overdue pending samples", zap.Time("cutoff", cutoff))
		return 0, nil
	}

	codes := make([]string, 0, len(samples))
	for i, s := range samples {
		if i == maxDigestCodes {
			break
		}
		codes = append(codes, s.SampleCode)
	}

	j.logger.Warn("overdue pending samples",
		zap.Int("count", len(samples)),
		zap.Strings("sample_codes", codes),
		zap.Time("cutoff", cutoff))

	if j.notifier != nil {
		days := int(j.maxAge / (24 * time.Hour))
		if err := j.notifier.NotifyPending(ctx, len(samples), days, codes); err != nil {
			// The digest is informational; a failed delivery does not fail the run
			j.logger.Warn("failed to deliver pending digest", zap.Error(err))
		}
	}

	return len(samples), nil
}
