package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cmd(t *testing.T, p *Panel, b ...byte) {
	t.Helper()
	for _, c := range b {
		require.NoError(t, p.Tx(0x3C, []byte{0x00, c}, nil))
	}
}

func data(t *testing.T, p *Panel, b ...byte) {
	t.Helper()
	require.NoError(t, p.Tx(0x3C, append([]byte{0x40}, b...), nil))
}

func TestSettings(t *testing.T) {
	p := New(0x3C)
	assert.False(t, p.IsOn())

	cmd(t, p, 0xAE, 0x20, 0x00, 0x81, 0xFF, 0x8D, 0x14, 0xAF)

	assert.True(t, p.IsOn())
	assert.Equal(t, byte(0xFF), p.Contrast())
	assert.True(t, p.ChargePump())
	assert.Equal(t, 8, p.Frames())
}

func TestArgumentIsNotAColumn(t *testing.T) {
	p := New(0x3C)

	// 0x05 is the argument of 0x81, not a low column nibble.
	cmd(t, p, 0xB1, 0x02, 0x10, 0x81, 0x05)
	data(t, p, 0xAA)

	assert.Equal(t, byte(0xAA), p.Column(1, 2))
	assert.Equal(t, byte(0x05), p.Contrast())
}

func TestDataAtCursor(t *testing.T) {
	p := New(0x3C)

	cmd(t, p, 0xB3, 0x0A, 0x15)
	data(t, p, 0x01, 0x80, 0xFF)

	assert.Equal(t, byte(0x01), p.Column(3, 0x5A))
	assert.Equal(t, byte(0x80), p.Column(3, 0x5B))
	assert.Equal(t, byte(0xFF), p.Column(3, 0x5C))
	assert.True(t, p.Pixel(0x5A, 24))
	assert.False(t, p.Pixel(0x5A, 25))
	assert.True(t, p.Pixel(0x5B, 31))
	assert.Equal(t, 10, p.Lit())
}

func TestHorizontalWrap(t *testing.T) {
	p := New(0x3C)
	cmd(t, p, 0x20, 0x00, 0xB0, 0x0E, 0x17)

	data(t, p, 0x01, 0x02, 0x04)

	assert.Equal(t, byte(0x01), p.Column(0, 126))
	assert.Equal(t, byte(0x02), p.Column(0, 127))
	assert.Equal(t, byte(0x04), p.Column(1, 0))
}

func TestImageIsCopy(t *testing.T) {
	p := New(0x3C)
	cmd(t, p, 0xB0, 0x00, 0x10)
	data(t, p, 0xFF)

	img := p.Image()
	assert.True(t, bool(img.BitAt(0, 7)))

	data(t, p, 0xFF)
	assert.False(t, bool(img.BitAt(1, 0)))
	assert.Equal(t, 16, p.Lit())
}

func TestRejects(t *testing.T) {
	p := New(0x3C)

	assert.Error(t, p.Tx(0x68, []byte{0x00, 0xAF}, nil))
	assert.Error(t, p.Tx(0x3C, []byte{0x3B}, make([]byte, 2)))
	assert.Error(t, p.Tx(0x3C, []byte{0x80, 0xAF}, nil))
	assert.NoError(t, p.Tx(0x3C, nil, nil))
	assert.False(t, p.IsOn())
}
