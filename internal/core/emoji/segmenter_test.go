package emoji

import (
	"html"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmojiUnits(t *testing.T) {
	t.Run("Пустая строка дает пустую последовательность", func(t *testing.T) {
		assert.Empty(t, ExtractEmojiUnits(""))
	})

	t.Run("Обычный текст без эмодзи", func(t *testing.T) {
		assert.Empty(t, ExtractEmojiUnits("Hello, World! 123 #tag *star*"))
	})

	t.Run("Одиночное эмодзи внутри текста", func(t *testing.T) {
		units := ExtractEmojiUnits("Hey! 👋")
		require.Len(t, units, 1)
		assert.Equal(t, "👋", units[0])
	})

	t.Run("Повторение: три одинаковых эмодзи дают три единицы", func(t *testing.T) {
		units := ExtractEmojiUnits("😊😊😊")
		require.Len(t, units, 3)
		for _, u := range units {
			assert.Equal(t, "😊", u)
		}
	})

	t.Run("Модификатор тона кожи связывается с базой в одну единицу", func(t *testing.T) {
		// U+1F44B + U+1F3FD
		input := "\U0001F44B\U0001F3FD"
		units := ExtractEmojiUnits(input)
		require.Len(t, units, 1)
		assert.Equal(t, input, units[0])
		assert.Len(t, []rune(units[0]), 2)
	})

	t.Run("ZWJ-семья извлекается одной единицей из семи кодовых точек", func(t *testing.T) {
		// Мужчина + ZWJ + женщина + ZWJ + девочка + ZWJ + мальчик
		family := "\U0001F468\u200d\U0001F469\u200d\U0001F467\u200d\U0001F466"
		units := ExtractEmojiUnits(family)
		require.Len(t, units, 1)
		assert.Equal(t, family, units[0])
		assert.Len(t, []rune(units[0]), 7, "4 базы + 3 джойнера")
	})

	t.Run("ZWJ-цепочка с VS16 внутри: радужный флаг", func(t *testing.T) {
		// U+1F3F3 + VS16 + ZWJ + U+1F308
		flag := "\U0001F3F3\ufe0f\u200d\U0001F308"
		units := ExtractEmojiUnits(flag)
		require.Len(t, units, 1)
		assert.Len(t, []rune(units[0]), 4)
	})

	t.Run("Профессия с тоном кожи внутри ZWJ-цепочки", func(t *testing.T) {
		// Мужчина + тон кожи + ZWJ + ноутбук
		tech := "\U0001F468\U0001F3FD\u200d\U0001F4BB"
		units := ExtractEmojiUnits(tech)
		require.Len(t, units, 1)
		assert.Equal(t, tech, units[0])
	})

	t.Run("Пиктографическая база требует VS16", func(t *testing.T) {
		units := ExtractEmojiUnits("❤️")
		require.Len(t, units, 1)
		assert.Len(t, []rune(units[0]), 2)

		// Без VS16 текстовый вариант сердца единицей не является
		assert.Empty(t, ExtractEmojiUnits("❤"))
	})

	t.Run("Keycap-последовательность засчитывается только целиком", func(t *testing.T) {
		keycap := "1️⃣"
		units := ExtractEmojiUnits(keycap)
		require.Len(t, units, 1)
		assert.Equal(t, keycap, units[0])

		assert.Empty(t, ExtractEmojiUnits("1"), "цифра сама по себе не эмодзи")
		assert.Empty(t, ExtractEmojiUnits("#"), "решетка сама по себе не эмодзи")
		assert.Empty(t, ExtractEmojiUnits("*"), "звездочка сама по себе не эмодзи")
	})

	t.Run("Региональные индикаторы не склеиваются в флаги", func(t *testing.T) {
		// Флаг Германии: U+1F1E9 U+1F1EA. Каждый индикатор выдается отдельно.
		units := ExtractEmojiUnits("\U0001F1E9\U0001F1EA")
		require.Len(t, units, 2)
		assert.Equal(t, "\U0001F1E9", units[0])
		assert.Equal(t, "\U0001F1EA", units[1])
	})

	t.Run("Одиночные стрелки классифицируются как эмодзи", func(t *testing.T) {
		units := ExtractEmojiUnits("a → b")
		require.Len(t, units, 1)
		assert.Equal(t, "→", units[0])
	})

	t.Run("HTML-сущности декодируются до сегментации", func(t *testing.T) {
		decoded := html.UnescapeString("&#128075;")
		units := ExtractEmojiUnits(decoded)
		require.Len(t, units, 1)
		assert.Equal(t, "👋", units[0])

		// По неэкранированному тексту сущность не распознается
		assert.Empty(t, ExtractEmojiUnits("&#128075;"))
	})

	t.Run("Порядок следования и дубликаты сохраняются", func(t *testing.T) {
		units := ExtractEmojiUnits("😊 text 👋 more 😊")
		require.Len(t, units, 3)
		assert.Equal(t, []string{"😊", "👋", "😊"}, units)
	})
}

func TestExtractEmojiUnitsIdempotence(t *testing.T) {
	inputs := []string{
		"Hey! 👋 nice 😊😊😊",
		"\U0001F468\u200d\U0001F469\u200d\U0001F467\u200d\U0001F466",
		"\U0001F44B\U0001F3FD and ❤️ and 1️⃣",
		"\U0001F1E9\U0001F1EA flags → arrows",
	}

	for _, input := range inputs {
		t.Run("Повторная сегментация склейки дает ту же последовательность", func(t *testing.T) {
			first := ExtractEmojiUnits(input)
			rejoined := strings.Join(first, "")
			second := ExtractEmojiUnits(rejoined)
			assert.Equal(t, first, second)
		})
	}
}

func TestExtractEmojiUnitsCoverage(t *testing.T) {
	t.Run("Удаление найденных единиц не затрагивает обычные символы", func(t *testing.T) {
		input := "a👋b😊c"
		remaining := input
		for _, u := range ExtractEmojiUnits(input) {
			remaining = strings.Replace(remaining, u, "", 1)
		}
		assert.Equal(t, "abc", remaining)
	})

	t.Run("Каждая единица является подстрокой исходного текста", func(t *testing.T) {
		input := "Привет 👨‍👩‍👧‍👦, как дела? 🎉🎉"
		for _, u := range ExtractEmojiUnits(input) {
			assert.Contains(t, input, u)
		}
	})
}
