package image

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadSymbolsRoundTrip(t *testing.T) {
	entry := uint16(0)
	img := &Image{
		Bytes: []byte{0x01, 0x02},
		Entry: &entry,
		Symbols: []Symbol{
			{Name: "_start", Visibility: Global, Offset: 0},
			{Name: "helper", Visibility: Internal, Offset: 0x10},
			{Name: "extern_fn", Visibility: Reference, Offset: 0},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, img.WriteSymbols(&buf))

	assert.Equal(t, "entry: 0x00\n_start: 0x00\nprivate $helper: 0x10\n", buf.String())

	symbols, readEntry, err := ReadSymbols(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, readEntry)
	assert.Equal(t, uint16(0), *readEntry)
	require.Len(t, symbols, 2)
	assert.Equal(t, "_start", symbols[0].Name)
	assert.Equal(t, Global, symbols[0].Visibility)
	assert.Equal(t, "helper", symbols[1].Name)
	assert.Equal(t, Internal, symbols[1].Visibility)
	assert.Equal(t, uint16(0x10), symbols[1].Offset)
}

func TestReadSymbolsWithoutEntryLine(t *testing.T) {
	symbols, entry, err := ReadSymbols(bytes.NewReader([]byte("main: 0x04\n")))
	require.NoError(t, err)
	assert.Nil(t, entry)
	require.Len(t, symbols, 1)
	assert.Equal(t, "main", symbols[0].Name)
}

func TestHasStart(t *testing.T) {
	assert.True(t, HasStart([]Symbol{{Name: "_start"}}))
	assert.False(t, HasStart([]Symbol{{Name: "main"}}))
}
