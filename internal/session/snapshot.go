// Package session implements the end-of-day order snapshot codec:
// newline-delimited JSON, one order per line, optionally gzip-compressed.
package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/domain"
	"github.com/abdoElHodaky/tradsys-lob/internal/price"
)

// record is the on-disk JSON shape of one Order line.
type record struct {
	Kind           string      `json:"kind"`
	Time           int64       `json:"time"`
	OrderID        int64       `json:"order_id"`
	Symbol         string      `json:"symbol"`
	Side           string      `json:"side"`
	TIF            string      `json:"tif"`
	Quantity       int64       `json:"quantity"`
	LimitPrice     price.Price `json:"limit_price,omitempty"`
	HiddenQuantity int64       `json:"hidden_quantity,omitempty"`
}

func toRecord(o domain.Order) record {
	kind := "market"
	switch o.Kind {
	case domain.KindLimit:
		kind = "limit"
	case domain.KindIceberg:
		kind = "iceberg"
	}
	return record{
		Kind:           kind,
		Time:           o.Time,
		OrderID:        o.OrderID,
		Symbol:         o.Symbol,
		Side:           o.Side.String(),
		TIF:            o.TIF.String(),
		Quantity:       o.Quantity,
		LimitPrice:     o.LimitPrice,
		HiddenQuantity: o.HiddenQuantity,
	}
}

func fromRecord(r record) (domain.Order, error) {
	side, err := domain.ParseSide(r.Side)
	if err != nil {
		return domain.Order{}, err
	}
	tif, err := domain.ParseTIF(r.TIF)
	if err != nil {
		return domain.Order{}, err
	}
	switch r.Kind {
	case "iceberg":
		return domain.NewIceberg(r.Time, r.OrderID, r.Symbol, side, r.Quantity, r.HiddenQuantity, r.LimitPrice, tif), nil
	case "limit":
		return domain.NewLimit(r.Time, r.OrderID, r.Symbol, side, r.Quantity, r.LimitPrice, tif), nil
	default:
		return domain.NewMarket(r.Time, r.OrderID, r.Symbol, side, r.Quantity), nil
	}
}

// gzipMagic is the two-byte header every gzip stream starts with.
var gzipMagic = []byte{0x1f, 0x8b}

// Write overwrites path with the newline-delimited JSON encoding of
// orders, one per line, optionally gzip-compressed. Returns a fresh ksuid
// snapshot ID for logging; the ID is not written into the file, so Read
// cannot recover it.
func Write(path string, orders []domain.Order, compress bool) (string, error) {
	id := ksuid.New().String()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, o := range orders {
		if err := enc.Encode(toRecord(o)); err != nil {
			return "", fmt.Errorf("session: encode order %d: %w", o.OrderID, err)
		}
	}

	if !compress {
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return "", fmt.Errorf("session: write %s: %w", path, err)
		}
		return id, nil
	}

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("session: gzip %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("session: gzip close %s: %w", path, err)
	}
	if err := os.WriteFile(path, gz.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("session: write %s: %w", path, err)
	}
	return id, nil
}

// Read loads path, transparently decompressing when it starts with the
// gzip magic header. Parse errors on a line are logged and the line
// skipped; they never abort the load (spec.md §6).
func Read(path string, logger *zap.Logger) ([]domain.Order, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var r io.Reader = bytes.NewReader(raw)
	if bytes.HasPrefix(raw, gzipMagic) {
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("session: gzip reader %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var out []domain.Order
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("session: skipping malformed snapshot line", zap.Error(err))
			continue
		}
		o, err := fromRecord(rec)
		if err != nil {
			logger.Warn("session: skipping invalid snapshot order", zap.Error(err))
			continue
		}
		out = append(out, o)
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("session: scan %s: %w", path, err)
	}
	return out, nil
}
