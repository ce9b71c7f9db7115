package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource(t *testing.T) {
	t.Run("Чтение данных из памяти", func(t *testing.T) {
		data := []byte("<html></html>")
		got, err := NewMemorySource(data).Fetch()
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("Fetch возвращает копию", func(t *testing.T) {
		data := []byte("abc")
		src := NewMemorySource(data)

		got, err := src.Fetch()
		require.NoError(t, err)

		got[0] = 'x'
		again, err := src.Fetch()
		require.NoError(t, err)
		assert.Equal(t, byte('a'), again[0], "изменение копии не должно затрагивать оригинал")
	})

	t.Run("Нулевые данные дают ошибку", func(t *testing.T) {
		_, err := NewMemorySource(nil).Fetch()
		assert.Error(t, err)
	})
}
