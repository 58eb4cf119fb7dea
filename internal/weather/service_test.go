package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	body []byte
	err  error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(context.Context) ([]byte, error) {
	return p.body, p.err
}

type fakeRecorder struct {
	outcomes []string
	stats    []TransformStats
	rows     int
}

func (r *fakeRecorder) ObserveRequest(_, outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *fakeRecorder) ObserveTransform(stats TransformStats, rows int) {
	r.stats = append(r.stats, stats)
	r.rows += rows
}

func TestService_HourlyTable(t *testing.T) {
	stockholm := time.FixedZone("CEST", 2*60*60)
	now := time.Date(2024, 5, 17, 21, 30, 0, 0, time.UTC)
	rec := &fakeRecorder{}

	svc := NewService(
		&fakeProvider{body: payload(entry(cel15, pcatLow), entry(cel15))},
		WithClock(func() time.Time { return now }),
		WithTimeZone(stockholm),
		WithRecorder(rec),
	)

	table, err := svc.HourlyTable(context.Background())
	require.NoError(t, err)

	require.Len(t, table, 1)
	assert.Equal(t, "2024-05-17", table[0].Date)
	assert.Equal(t, "23", table[0].Hour, "clock is read in the configured zone")
	assert.Equal(t, []string{"ok"}, rec.outcomes)
	assert.Equal(t, []TransformStats{{Considered: 2, Skipped: 1}}, rec.stats)
	assert.Equal(t, 1, rec.rows)
}

func TestService_HourlyTableErrors(t *testing.T) {
	timeout := &TransportError{Provider: "fake", Err: context.DeadlineExceeded}

	cases := []struct {
		name     string
		provider *fakeProvider
		outcome  string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "transport timeout",
			provider: &fakeProvider{err: timeout},
			outcome:  "timeout",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, context.DeadlineExceeded)
				var te *TransportError
				require.ErrorAs(t, err, &te)
				assert.True(t, te.Timeout())
			},
		},
		{
			name:     "status",
			provider: &fakeProvider{err: &StatusError{Provider: "fake", StatusCode: 503}},
			outcome:  "status",
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, 503, se.StatusCode)
			},
		},
		{
			name:     "breaker open",
			provider: &fakeProvider{err: ErrUpstreamUnavailable},
			outcome:  "unavailable",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUpstreamUnavailable)
			},
		},
		{
			name:     "invalid json",
			provider: &fakeProvider{body: []byte("invalid json")},
			outcome:  "parse",
			check: func(t *testing.T, err error) {
				var pe *ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
		{
			name:     "missing timeSeries",
			provider: &fakeProvider{body: []byte(`{}`)},
			outcome:  "structure",
			check: func(t *testing.T, err error) {
				var se *StructureError
				assert.ErrorAs(t, err, &se)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			svc := NewService(tc.provider, WithRecorder(rec))

			table, err := svc.HourlyTable(context.Background())
			require.Error(t, err)
			assert.Nil(t, table)
			assert.Equal(t, []string{tc.outcome}, rec.outcomes)
			assert.Empty(t, rec.stats)
			tc.check(t, err)
		})
	}
}

func TestService_Probe(t *testing.T) {
	now := time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)
	p := &fakeProvider{body: []byte("not even json")}
	svc := NewService(p, WithClock(func() time.Time { return now }))

	assert.True(t, svc.LastProbe().CheckedAt.IsZero())

	status := svc.Probe(context.Background())
	assert.True(t, status.OK, "probe checks reachability only")
	assert.Equal(t, status, svc.LastProbe())

	p.err = errors.New("connection refused")
	status = svc.Probe(context.Background())
	assert.False(t, status.OK)
	assert.Equal(t, "connection refused", status.Error)
	assert.Equal(t, now, svc.LastProbe().CheckedAt)
}

func TestService_NoProvider(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.HourlyTable(context.Background())
	assert.Error(t, err)
	assert.False(t, svc.Probe(context.Background()).OK)
}
