package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/attractify/onboarding/internal/infrastructure/config"
)

type noteModel struct {
	ID   uint   `gorm:"primaryKey"`
	Body string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&noteModel{}))
	return db
}

// useRecorder installs a recording global provider for the test
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false, ServiceName: "onboardd"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, "onboardd", tp.GetConfig().ServiceName)
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_ExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	exporter := tracetest.NewInMemoryExporter()
	tp, err := newTracerProvider(context.Background(), Config{
		Enabled:       true,
		SamplingRatio: 1.0,
		ServiceName:   "onboardd",
		Environment:   "test",
	}, zap.NewNop(), exporter)
	require.NoError(t, err)
	require.True(t, tp.IsEnabled())

	_, span := StartSpan(context.Background(), "roster.refresh", WithAttribute(SpanAttrCount, 3))
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "roster.refresh", spans[0].Name)
	assert.Equal(t, int64(3), attrMap(spans[0].Attributes)[SpanAttrCount].AsInt64())

	res := attrMap(spans[0].Resource.Attributes())
	assert.Equal(t, "onboardd", res["service.name"].AsString())
	assert.Equal(t, "dev", res["service.version"].AsString())
	assert.Equal(t, "test", res["deployment.environment"].AsString())

	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestConfigFrom(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Env: "production"},
		Telemetry: config.TelemetryConfig{
			Enabled:           true,
			CollectorEndpoint: "otel:4317",
			SamplingRatio:     0.5,
			ServiceName:       "onboardd",
			Insecure:          true,
		},
	}
	got := ConfigFrom(cfg, "1.2.3")
	assert.Equal(t, Config{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.5,
		ServiceName:       "onboardd",
		ServiceVersion:    "1.2.3",
		Environment:       "production",
		Insecure:          true,
	}, got)
}

func TestStartSpan_RecordError(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartSpan(context.Background(), "client.delete", WithAttribute(SpanAttrClientID, "c1"))
	RecordError(span, errors.New("store down"))
	RecordError(span, nil)
	span.End()

	_, ok := StartSpan(context.Background(), "client.get")
	SetOK(ok)
	ok.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "store down", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "c1", attrMap(spans[0].Attributes())[SpanAttrClientID].AsString())
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
}

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.String("k", "v"), toAttribute("k", "v"))
	assert.Equal(t, attribute.Int("k", 1), toAttribute("k", 1))
	assert.Equal(t, attribute.Bool("k", true), toAttribute("k", true))
	assert.Equal(t, attribute.String("k", "1s"), toAttribute("k", time.Second))
	assert.Equal(t, attribute.String("k", "[1 2]"), toAttribute("k", []int{1, 2}))
}

func TestDBTracingConfigFrom(t *testing.T) {
	got := DBTracingConfigFrom(config.TelemetryConfig{Enabled: true, DBTraceEnabled: true})
	assert.True(t, got.Enabled)
	assert.Equal(t, 200*time.Millisecond, got.SlowQueryThresh)

	got = DBTracingConfigFrom(config.TelemetryConfig{Enabled: false, DBTraceEnabled: true, DBSlowQueryThresh: time.Second})
	assert.False(t, got.Enabled, "db spans need tracing on")
	assert.Equal(t, time.Second, got.SlowQueryThresh)
}

func TestDBTracingPlugin_Register(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{}, nil)
		require.NoError(t, plugin.Register(db))
		assert.Nil(t, db.Callback().Query().Get("otel_timing:after_query"))
	})

	t.Run("enabled traces statements", func(t *testing.T) {
		recorder := useRecorder(t)
		db := setupTestDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
		require.NoError(t, plugin.Register(db))
		assert.NotNil(t, db.Callback().Query().Get("otel_timing:after_query"))

		ctx, parent := StartSpan(context.Background(), "test")
		tx := db.WithContext(ctx)
		require.NoError(t, tx.Create(&noteModel{Body: "hello"}).Error)
		var found noteModel
		require.NoError(t, tx.First(&found).Error)
		parent.End()

		assert.Greater(t, len(recorder.Ended()), 1, "statement spans recorded beside the parent")
	})

	t.Run("registering twice fails", func(t *testing.T) {
		db := setupTestDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
		require.NoError(t, plugin.Register(db))
		assert.Error(t, plugin.Register(db))
	})
}

func TestDBTracingPlugin_AfterQuery(t *testing.T) {
	recorder := useRecorder(t)
	db := setupTestDB(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.NewNop())

	ctx, span := StartSpan(context.Background(), "statement")
	ctx = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-5*time.Millisecond))

	tx := db.WithContext(ctx).Session(&gorm.Session{})
	tx.Statement.Table = "clients"
	tx.Statement.RowsAffected = 3
	tx.Error = errors.New("constraint failed")
	plugin.afterQuery(tx)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	attrs := attrMap(got.Attributes())
	assert.Equal(t, "clients", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, codes.Error, got.Status().Code)

	var names []string
	for _, e := range got.Events() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "slow_query_warning")
}

func TestDBTracingPlugin_AfterQuery_RecordNotFoundIsNotAnError(t *testing.T) {
	recorder := useRecorder(t)
	db := setupTestDB(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Hour}, zap.NewNop())

	ctx, span := StartSpan(context.Background(), "statement")
	tx := db.WithContext(ctx).Session(&gorm.Session{})
	tx.Error = gorm.ErrRecordNotFound
	plugin.afterQuery(tx)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	_, slow := attrMap(spans[0].Attributes())["db.slow_query"]
	assert.False(t, slow)
}
