// Package verify checks that generated maps survive serialization. It
// runs a fixed battery of field comparisons between an original map and
// its round-tripped copies, one per wire format, then grades compression
// savings and serializer timings against budgets.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/overmap/internal/mapio"
	"github.com/samdwyer/overmap/internal/telemetry"
	"github.com/samdwyer/overmap/internal/world"
)

// minCompressionSavings is the fraction of the uncompressed size that
// compression must shave off for the compression check to pass.
const minCompressionSavings = 0.10

const (
	serializeBudget   = 750 * time.Millisecond
	deserializeBudget = 750 * time.Millisecond
)

// ErrNilMap reports a validation call without a map.
var ErrNilMap = errors.New("verify: map is required")

// FormatResult is the outcome of one wire format's round trip.
type FormatResult struct {
	Format          string
	Passed          bool
	Mismatches      []string
	SerializeTime   time.Duration
	DeserializeTime time.Duration
	Size            int
}

// CompressionResult compares the binary envelope with and without gzip.
type CompressionResult struct {
	UncompressedSize int
	CompressedSize   int
	Ratio            float64
	Passed           bool
}

// PerformanceResult holds average serializer timings across formats.
type PerformanceResult struct {
	AvgSerialize   time.Duration
	AvgDeserialize time.Duration
	Passed         bool
}

// Report aggregates every check from one validation run.
type Report struct {
	Formats     []FormatResult
	Compression CompressionResult
	Performance PerformanceResult
	Success     bool
}

// String renders the report for humans, one line per check.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "round-trip validation: %s\n", passFail(r.Success))
	for _, f := range r.Formats {
		fmt.Fprintf(&sb, "  %-8s %s  %d bytes, serialize %s, deserialize %s\n",
			f.Format+":", passFail(f.Passed), f.Size,
			f.SerializeTime.Round(time.Microsecond), f.DeserializeTime.Round(time.Microsecond))
		for _, miss := range f.Mismatches {
			fmt.Fprintf(&sb, "    mismatch: %s\n", miss)
		}
	}
	fmt.Fprintf(&sb, "  compression: %s  %d -> %d bytes (ratio %.2f)\n",
		passFail(r.Compression.Passed), r.Compression.UncompressedSize,
		r.Compression.CompressedSize, r.Compression.Ratio)
	fmt.Fprintf(&sb, "  performance: %s  serialize avg %s, deserialize avg %s\n",
		passFail(r.Performance.Passed),
		r.Performance.AvgSerialize.Round(time.Microsecond),
		r.Performance.AvgDeserialize.Round(time.Microsecond))
	return sb.String()
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// RoundTripValidator runs the comparison battery over both wire formats
// of a single serializer configuration.
type RoundTripValidator struct {
	serializer *mapio.Serializer
}

// NewRoundTripValidator creates a validator whose round trips use the
// given serializer settings.
func NewRoundTripValidator(settings mapio.Settings) *RoundTripValidator {
	return &RoundTripValidator{serializer: mapio.NewSerializer(settings)}
}

// Run round-trips the map through both formats and grades the results.
// Serializer failures abort the run; mismatches do not, they fail the
// report instead.
func (v *RoundTripValidator) Run(ctx context.Context, m *world.MapData) (*Report, error) {
	if m == nil {
		return nil, ErrNilMap
	}
	_, span := telemetry.Tracer("verify").Start(ctx, "verify.round_trip")
	defer span.End()

	jsonResult, err := v.checkFormat(m, "json", v.serializer.ToJSON, v.serializer.FromJSON)
	if err != nil {
		return nil, err
	}
	binaryResult, err := v.checkFormat(m, "binary", v.serializer.ToBinary, v.serializer.FromBinary)
	if err != nil {
		return nil, err
	}
	compression, err := checkCompression(m)
	if err != nil {
		return nil, err
	}

	perf := PerformanceResult{
		AvgSerialize:   (jsonResult.SerializeTime + binaryResult.SerializeTime) / 2,
		AvgDeserialize: (jsonResult.DeserializeTime + binaryResult.DeserializeTime) / 2,
	}
	perf.Passed = perf.AvgSerialize <= serializeBudget && perf.AvgDeserialize <= deserializeBudget

	rep := &Report{
		Formats:     []FormatResult{jsonResult, binaryResult},
		Compression: compression,
		Performance: perf,
	}
	rep.Success = jsonResult.Passed && binaryResult.Passed && compression.Passed && perf.Passed

	span.SetAttributes(
		attribute.Bool("verify.success", rep.Success),
		attribute.Int("verify.mismatches", len(jsonResult.Mismatches)+len(binaryResult.Mismatches)),
	)
	return rep, nil
}

func (v *RoundTripValidator) checkFormat(m *world.MapData, format string,
	encode func(*world.MapData) ([]byte, error), decode func([]byte) (*world.MapData, error)) (FormatResult, error) {

	res := FormatResult{Format: format}

	start := time.Now()
	data, err := encode(m)
	res.SerializeTime = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("verify: %s serialize: %w", format, err)
	}
	res.Size = len(data)

	start = time.Now()
	got, err := decode(data)
	res.DeserializeTime = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("verify: %s deserialize: %w", format, err)
	}

	res.Mismatches = compare(m, got)
	res.Passed = len(res.Mismatches) == 0
	return res, nil
}

// checkCompression sizes the binary envelope with and without gzip.
func checkCompression(m *world.MapData) (CompressionResult, error) {
	plain, err := mapio.NewSerializer(mapio.Settings{}).ToBinary(m)
	if err != nil {
		return CompressionResult{}, fmt.Errorf("verify: compression probe: %w", err)
	}
	packed, err := mapio.NewSerializer(mapio.Settings{EnableCompression: true}).ToBinary(m)
	if err != nil {
		return CompressionResult{}, fmt.Errorf("verify: compression probe: %w", err)
	}

	res := CompressionResult{
		UncompressedSize: len(plain),
		CompressedSize:   len(packed),
	}
	if len(plain) > 0 {
		res.Ratio = float64(len(packed)) / float64(len(plain))
	}
	res.Passed = res.Ratio <= 1.0-minCompressionSavings
	return res, nil
}
