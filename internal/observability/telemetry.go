package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/logging"
)

// ShutdownFunc сбрасывает накопленные спаны и останавливает провайдер
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// exporterOptions переводит конфигурацию в опции OTLP HTTP экспортера.
// Без Endpoint экспортер читает OTEL_EXPORTER_OTLP_ENDPOINT (по умолчанию localhost:4318).
func exporterOptions(cfg config.TelemetryConfig) []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// sampler семплирует корневые спаны с долей ratio, дочерние следуют родителю
func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// InitTelemetry ставит глобальный TracerProvider с OTLP экспортом: спаны
// сохранений и загрузок, HTTP-запросы статус-сервера. При выключенной
// телеметрии остаётся no-op провайдер otel.
func InitTelemetry(ctx context.Context, cfg config.TelemetryConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		logging.Debug("📡 OpenTelemetry выключен")
		return noopShutdown, nil
	}

	exp, err := otlptracehttp.New(ctx, exporterOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
		resource.WithHost(),
		resource.WithProcessPID(),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "env/localhost:4318"
	}
	logging.Info("📡 OpenTelemetry: service=%s, endpoint=%s, sample=%.2f", cfg.ServiceName, endpoint, cfg.SampleRatio)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}
