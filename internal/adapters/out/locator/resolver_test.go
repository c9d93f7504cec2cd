package locator

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/logger"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Locate(ctx context.Context, riderNumber string) (kernel.Location, error) {
	args := m.Called(ctx, riderNumber)
	return args.Get(0).(kernel.Location), args.Error(1)
}

type recordingMetrics struct {
	mu      sync.Mutex
	sources []string
}

func (m *recordingMetrics) ObserveLocation(source string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, source)
}

func mustLocation(t *testing.T, lat, lon float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	return loc
}

func TestResolver_ProviderSuccess(t *testing.T) {
	provider := &MockProvider{}
	want := mustLocation(t, 6.6, 3.35)
	provider.On("Locate", mock.Anything, "0801").Return(want, nil).Once()
	metrics := &recordingMetrics{}

	r, err := NewResolver(Options{Provider: provider, Jitter: DefaultJitterDegrees, Metrics: metrics})
	require.NoError(t, err)

	got := r.Resolve(context.Background(), "0801")

	eq, err := got.IsEqual(want)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.Equal(t, kernel.Measured, got.Provenance())
	assert.Equal(t, []string{"measured"}, metrics.sources)
	provider.AssertExpectations(t)
}

func TestResolver_FallbackOnProviderError(t *testing.T) {
	provider := &MockProvider{}
	provider.On("Locate", mock.Anything, "0801").Return(kernel.Location{}, errors.New("boom")).Once()
	metrics := &recordingMetrics{}
	var buf bytes.Buffer

	r, err := NewResolver(Options{
		Provider: provider,
		Center:   mustLocation(t, DefaultFallbackLatitude, DefaultFallbackLongitude),
		Jitter:   DefaultJitterDegrees,
		Rand:     func() float64 { return 1 },
		Metrics:  metrics,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: &buf}),
	})
	require.NoError(t, err)

	got := r.Resolve(context.Background(), "0801")

	assert.True(t, got.IsSimulated())
	assert.InDelta(t, DefaultFallbackLatitude+DefaultJitterDegrees, got.Latitude(), 1e-9)
	assert.InDelta(t, DefaultFallbackLongitude+DefaultJitterDegrees, got.Longitude(), 1e-9)
	assert.Equal(t, []string{"simulated"}, metrics.sources)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"rider_number":"0801"`)
	assert.Contains(t, buf.String(), "boom")
}

func TestResolver_FallbackStaysWithinJitter(t *testing.T) {
	provider := &MockProvider{}
	provider.On("Locate", mock.Anything, mock.Anything).Return(kernel.Location{}, errors.New("down"))

	r, err := NewResolver(Options{Provider: provider, Jitter: DefaultJitterDegrees})
	require.NoError(t, err)

	for range 200 {
		got := r.Resolve(context.Background(), "0801")
		require.True(t, got.IsSimulated())
		assert.InDelta(t, DefaultFallbackLatitude, got.Latitude(), DefaultJitterDegrees)
		assert.InDelta(t, DefaultFallbackLongitude, got.Longitude(), DefaultJitterDegrees)
	}
}

func TestResolver_NoProvider(t *testing.T) {
	r, err := NewResolver(Options{Jitter: 0})
	require.NoError(t, err)

	got := r.Resolve(context.Background(), "0801")

	assert.True(t, got.IsSimulated())
	assert.InDelta(t, DefaultFallbackLatitude, got.Latitude(), 1e-9)
	assert.InDelta(t, DefaultFallbackLongitude, got.Longitude(), 1e-9)
}

func TestResolver_CancelledContextSkipsProvider(t *testing.T) {
	provider := &MockProvider{}
	r, err := NewResolver(Options{Provider: provider, Jitter: DefaultJitterDegrees})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := r.Resolve(ctx, "0801")

	assert.True(t, got.IsSimulated())
	provider.AssertNotCalled(t, "Locate", mock.Anything, mock.Anything)
}

func TestNewResolver_RejectsNegativeJitter(t *testing.T) {
	_, err := NewResolver(Options{Jitter: -1})
	require.Error(t, err)
}
