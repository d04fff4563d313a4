package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/domain"
	"github.com/abdoElHodaky/tradsys-lob/internal/price"
)

func sampleOrders() []domain.Order {
	return []domain.Order{
		domain.NewLimit(1, 1, "ABC", domain.Bid, 10, price.MustParse("100.00"), domain.GoodTillCancel),
		domain.NewIceberg(2, 2, "ABC", domain.Ask, 3, 20, price.MustParse("101.00"), domain.GoodTillCancel),
		domain.NewMarket(3, 3, "ABC", domain.Bid, 5),
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.ndjson")
	orders := sampleOrders()

	id, err := Write(path, orders, false)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := Read(path, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.KindLimit, got[0].Kind)
	assert.Equal(t, int64(10), got[0].Quantity)
	assert.Equal(t, domain.KindIceberg, got[1].Kind)
	assert.Equal(t, int64(20), got[1].HiddenQuantity)
	assert.Equal(t, domain.KindMarket, got[2].Kind)
}

func TestWriteReadRoundTripCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.ndjson.gz")
	orders := sampleOrders()

	_, err := Write(path, orders, true)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b)

	got, err := Read(path, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0].Quantity)
}

func TestReadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.ndjson")
	content := `{"kind":"limit","time":1,"order_id":1,"symbol":"ABC","side":"buy","tif":"good_till_cancel","quantity":10,"limit_price":"100.00"}
not-json-at-all
{"kind":"limit","time":2,"order_id":2,"symbol":"ABC","side":"sell","tif":"good_till_cancel","quantity":5,"limit_price":"101.00"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := Read(path, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].OrderID)
	assert.Equal(t, int64(2), got[1].OrderID)
}

func TestReadEmptyFileReturnsNoOrders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ndjson")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := Read(path, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadMissingFileErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.ndjson"), zap.NewNop())
	assert.Error(t, err)
}
