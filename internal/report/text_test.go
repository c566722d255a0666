// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		in         []byte
		ok         bool
		wantText   string
		wantOffset int
	}{
		{name: "ascii", in: []byte("hello\n"), ok: true, wantText: "hello\n"},
		{name: "multibyte", in: []byte("grüße ✓"), ok: true, wantText: "grüße ✓"},
		{name: "empty", in: []byte{}, ok: true, wantText: ""},
		{name: "leading invalid byte", in: []byte{0xff, 'a'}, wantOffset: 0},
		{name: "invalid after valid runes", in: []byte("ü\xc3"), wantOffset: 2},
		{name: "latin-1 text", in: []byte("caf\xe9"), wantOffset: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.in)
			assert.Equal(t, tt.ok, got.OK())

			if tt.ok {
				require.NoError(t, got.Err())
				assert.Equal(t, tt.wantText, got.String())
				assert.Nil(t, got.Raw())
				assert.Equal(t, tt.wantText, got.Render())

				return
			}

			var derr *DecodeError

			require.ErrorAs(t, got.Err(), &derr)
			assert.Equal(t, tt.wantOffset, derr.Offset)
			assert.Equal(t, tt.in, got.Raw())
			assert.Empty(t, got.String())
			assert.Contains(t, got.Render(), "could not be decoded")
		})
	}
}
