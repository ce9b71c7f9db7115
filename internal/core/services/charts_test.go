package services

import (
	"testing"
	"time"

	"instagram-chat-parser/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedMsg(sender string, ts time.Time) domain.Message {
	return domain.Message{Sender: sender, Timestamp: &ts, Type: domain.MessageTypeText}
}

func TestMessageCountSeries(t *testing.T) {
	t.Run("Подписи и значения параллельны и упорядочены по убыванию", func(t *testing.T) {
		stats := domain.Statistics{
			MessageCountByUser: map[string]int{"Alice": 3, "Bob": 5, "Carol": 3},
		}
		s := MessageCountSeries(stats)

		assert.Equal(t, []string{"Bob", "Alice", "Carol"}, s.Labels)
		assert.Equal(t, []int{5, 3, 3}, s.Data)
	})

	t.Run("Пустая статистика дает пустые массивы одинаковой длины", func(t *testing.T) {
		s := MessageCountSeries(domain.Statistics{MessageCountByUser: map[string]int{}})
		assert.Empty(t, s.Labels)
		assert.Empty(t, s.Data)
		assert.Len(t, s.Data, len(s.Labels))
	})
}

func TestTopEmojiSeries(t *testing.T) {
	stats := domain.Statistics{
		TopEmojis: []domain.EmojiCount{
			{Emoji: "😊", Count: 10},
			{Emoji: "👋", Count: 7},
			{Emoji: "🎉", Count: 3},
		},
	}

	t.Run("Отсечение топа после фильтрации", func(t *testing.T) {
		// Игнорируемое эмодзи не занимает слот и не вытесняет настоящую запись
		ignored := map[string]struct{}{"😊": {}}
		s := TopEmojiSeries(stats, ignored, 2)

		assert.Equal(t, []string{"👋", "🎉"}, s.Labels)
		assert.Equal(t, []int{7, 3}, s.Data)
	})

	t.Run("Лимит меньше числа записей", func(t *testing.T) {
		s := TopEmojiSeries(stats, nil, 1)
		assert.Equal(t, []string{"😊"}, s.Labels)
	})

	t.Run("Нулевой лимит дает пустой ряд", func(t *testing.T) {
		s := TopEmojiSeries(stats, nil, 0)
		assert.Empty(t, s.Labels)
		assert.Empty(t, s.Data)
	})

	t.Run("Повторный вызов на неизменном входе идентичен", func(t *testing.T) {
		assert.Equal(t, TopEmojiSeries(stats, nil, 8), TopEmojiSeries(stats, nil, 8))
	})
}

func TestTimelineSeries(t *testing.T) {
	t.Run("Дневные корзины отсортированы хронологически", func(t *testing.T) {
		messages := []domain.Message{
			timedMsg("Alice", time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)),
			timedMsg("Bob", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)),
			timedMsg("Alice", time.Date(2024, 2, 10, 20, 0, 0, 0, time.UTC)),
		}
		s := TimelineSeries(messages, BucketDay)

		assert.Equal(t, []string{"2024-01-05", "2024-02-10"}, s.Labels)
		assert.Equal(t, []int{1, 2}, s.Data)
	})

	t.Run("Месячные и недельные ключи дополнены нулями", func(t *testing.T) {
		messages := []domain.Message{
			timedMsg("Alice", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)),
		}
		assert.Equal(t, []string{"2024-03"}, TimelineSeries(messages, BucketMonth).Labels)
		assert.Equal(t, []string{"2024-W10"}, TimelineSeries(messages, BucketWeek).Labels)
	})

	t.Run("Сообщения без метки времени пропускаются", func(t *testing.T) {
		messages := []domain.Message{
			{Sender: "Alice", Type: domain.MessageTypeText},
			timedMsg("Bob", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		}
		s := TimelineSeries(messages, BucketDay)
		assert.Equal(t, []int{1}, s.Data)
	})
}

func TestHistograms(t *testing.T) {
	t.Run("Гистограмма дней недели всегда из семи корзин", func(t *testing.T) {
		s := WeekdayHistogram(nil)
		require.Len(t, s.Labels, 7)
		require.Len(t, s.Data, 7)
		assert.Equal(t, "Monday", s.Labels[0])
		assert.Equal(t, "Sunday", s.Labels[6])

		// 2024-01-15 — понедельник
		s = WeekdayHistogram([]domain.Message{
			timedMsg("Alice", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)),
			timedMsg("Bob", time.Date(2024, 1, 21, 10, 0, 0, 0, time.UTC)),
		})
		assert.Equal(t, 1, s.Data[0], "понедельник")
		assert.Equal(t, 1, s.Data[6], "воскресенье")
	})

	t.Run("Гистограмма часов всегда из 24 корзин", func(t *testing.T) {
		s := HourHistogram(nil)
		require.Len(t, s.Labels, 24)
		require.Len(t, s.Data, 24)
		assert.Equal(t, "00", s.Labels[0])
		assert.Equal(t, "23", s.Labels[23])

		s = HourHistogram([]domain.Message{
			timedMsg("Alice", time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)),
		})
		assert.Equal(t, 1, s.Data[23])
	})
}

func TestPerUserTimeline(t *testing.T) {
	t.Run("Ряды выровнены по общим корзинам с заполнением нулями", func(t *testing.T) {
		messages := []domain.Message{
			timedMsg("Alice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			timedMsg("Bob", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
			timedMsg("Alice", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
		}
		ms := PerUserTimeline(messages, BucketDay)

		require.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, ms.Labels)
		require.Len(t, ms.Users, 2)

		// Отправители в порядке первого появления
		assert.Equal(t, "Alice", ms.Users[0].Name)
		assert.Equal(t, []int{1, 0, 1}, ms.Users[0].Data, "пропущенная корзина заполняется нулем")
		assert.Equal(t, "Bob", ms.Users[1].Name)
		assert.Equal(t, []int{0, 1, 0}, ms.Users[1].Data)
	})

	t.Run("Пустой вход дает пустой набор рядов", func(t *testing.T) {
		ms := PerUserTimeline(nil, BucketDay)
		assert.Empty(t, ms.Labels)
		assert.Empty(t, ms.Users)
	})
}
