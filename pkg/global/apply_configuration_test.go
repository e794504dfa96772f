package global

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buildbarn/bb-pagesim/internal/mock"
	"github.com/buildbarn/bb-pagesim/pkg/testutil"
	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDiagnosticsServerRouter(t *testing.T) {
	ds := &DiagnosticsServer{
		config: &DiagnosticsHTTPServerConfiguration{
			ListenAddress:    ":9980",
			EnablePrometheus: true,
		},
	}
	router := ds.NewRouter()

	get := func(path string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	require.Equal(t, http.StatusOK, get("/-/healthy"))
	require.Equal(t, http.StatusServiceUnavailable, get("/-/ready"))
	ds.SetReady()
	require.Equal(t, http.StatusOK, get("/-/ready"))
	ds.SetNotServing()
	require.Equal(t, http.StatusServiceUnavailable, get("/-/ready"))

	require.Equal(t, http.StatusOK, get("/metrics"))
	require.Equal(t, http.StatusNotFound, get("/debug/pprof/"))
}

func TestNewSamplerFromConfiguration(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mock.NewMockClock(ctrl)

	t.Run("Missing", func(t *testing.T) {
		_, err := newSamplerFromConfiguration(nil, clock)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("Always", func(t *testing.T) {
		sampler, err := newSamplerFromConfiguration(&SamplerConfiguration{Always: true}, clock)
		require.NoError(t, err)
		require.Equal(t, sdktrace.RecordAndSample, sampler.ShouldSample(sdktrace.SamplingParameters{}).Decision)
	})

	t.Run("ParentBasedMissingChild", func(t *testing.T) {
		_, err := newSamplerFromConfiguration(&SamplerConfiguration{
			ParentBased: &ParentBasedSamplerConfiguration{
				NoParent: &SamplerConfiguration{Never: true},
			},
		}, clock)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
		require.Contains(t, status.Convert(err).Message(), "Local parent not sampled")
	})

	t.Run("MaximumRate", func(t *testing.T) {
		sampler, err := newSamplerFromConfiguration(&SamplerConfiguration{
			MaximumRate: &MaximumRateSamplerConfiguration{
				SamplesPerEpoch: 1,
				EpochDuration:   util.Duration(time.Second),
			},
		}, clock)
		require.NoError(t, err)

		clock.EXPECT().Now().Return(time.Unix(1000, 0))
		require.Equal(t, sdktrace.RecordAndSample, sampler.ShouldSample(sdktrace.SamplingParameters{}).Decision)
		clock.EXPECT().Now().Return(time.Unix(1000, 500000000))
		require.Equal(t, sdktrace.Drop, sampler.ShouldSample(sdktrace.SamplingParameters{}).Decision)
	})

	t.Run("MaximumRateInvalid", func(t *testing.T) {
		_, err := newSamplerFromConfiguration(&SamplerConfiguration{
			MaximumRate: &MaximumRateSamplerConfiguration{},
		}, clock)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestNewTracerProviderOptionsFromConfiguration(t *testing.T) {
	_, err := newTracerProviderOptionsFromConfiguration(&TracingConfiguration{
		Backends: []TracingBackendConfiguration{{}},
		Sampler:  &SamplerConfiguration{Always: true},
	})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	options, err := newTracerProviderOptionsFromConfiguration(&TracingConfiguration{
		ResourceAttributes: map[string]string{"service.name": "bb_pagesim"},
		Sampler:            &SamplerConfiguration{Always: true},
	})
	require.NoError(t, err)
	require.Len(t, options, 2)

	t.Run("OTLP", func(t *testing.T) {
		// The gRPC connection is created lazily, so no collector
		// needs to be running.
		options, err := newTracerProviderOptionsFromConfiguration(&TracingConfiguration{
			Backends: []TracingBackendConfiguration{{
				OTLPSpanExporter: &OTLPSpanExporterConfiguration{
					Address:  "localhost:4317",
					Insecure: true,
				},
			}},
			Sampler: &SamplerConfiguration{Never: true},
		})
		require.NoError(t, err)
		require.Len(t, options, 3)
	})

	t.Run("OTLPWithoutAddress", func(t *testing.T) {
		_, err := newTracerProviderOptionsFromConfiguration(&TracingConfiguration{
			Backends: []TracingBackendConfiguration{{
				OTLPSpanExporter: &OTLPSpanExporterConfiguration{},
			}},
			Sampler: &SamplerConfiguration{Always: true},
		})
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "OTLP span exporter of tracing backend 0 has no address"), err)
	})

	t.Run("MultipleSpanExporters", func(t *testing.T) {
		_, err := newTracerProviderOptionsFromConfiguration(&TracingConfiguration{
			Backends: []TracingBackendConfiguration{{
				JaegerCollectorSpanExporter: &JaegerCollectorSpanExporterConfiguration{},
				OTLPSpanExporter:            &OTLPSpanExporterConfiguration{Address: "localhost:4317"},
			}},
			Sampler: &SamplerConfiguration{Always: true},
		})
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Tracing backend 0 contains multiple span exporters"), err)
	})
}

func TestGetGracefulShutdownTimeout(t *testing.T) {
	var missing *Configuration
	require.Equal(t, time.Duration(0), missing.GetGracefulShutdownTimeout())

	require.Equal(t, 30*time.Second, (&Configuration{
		GracefulShutdownTimeout: util.Duration(30 * time.Second),
	}).GetGracefulShutdownTimeout())
}
