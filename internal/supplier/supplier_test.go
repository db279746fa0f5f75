package supplier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSKUs(t *testing.T) {
	tests := []struct {
		name  string
		count int
		size  int
		want  []int // chunk lengths
	}{
		{"exact multiple", 100, 50, []int{50, 50}},
		{"remainder", 123, 50, []int{50, 50, 23}},
		{"single chunk", 10, 50, []int{10}},
		{"one per chunk", 3, 1, []int{1, 1, 1}},
		{"empty", 0, 50, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunkSKUs(skuList(tt.count), tt.size)
			require.Len(t, chunks, len(tt.want))

			total := 0
			for i, chunk := range chunks {
				assert.Len(t, chunk, tt.want[i])
				total += len(chunk)
			}
			assert.Equal(t, tt.count, total)
		})
	}
}

func TestNewSelectsDriver(t *testing.T) {
	feed, err := New(Config{URL: "https://example.com/stock", Token: "t"})
	require.NoError(t, err)
	assert.IsType(t, &FeedClient{}, feed)

	warehouse, err := New(Config{
		Driver:         DriverWarehouse,
		URL:            "https://example.com/inventory",
		Token:          "t",
		CustomerNumber: "1",
	})
	require.NoError(t, err)
	assert.IsType(t, &WarehouseClient{}, warehouse)

	_, err = New(Config{Driver: "csv", URL: "https://example.com", Token: "t"})
	assert.Error(t, err)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{URL: "https://example.com/stock"})
	assert.Error(t, err)

	_, err = New(Config{Token: "t"})
	assert.Error(t, err)
}
