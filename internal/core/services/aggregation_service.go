package services

import (
	"instagram-chat-parser/internal/domain"
	"instagram-chat-parser/internal/ports"
	"sort"
)

// AggregationServiceImpl реализует интерфейс AggregationService.
type AggregationServiceImpl struct{}

// NewAggregationService создает новый экземпляр AggregationServiceImpl.
func NewAggregationService() ports.AggregationService {
	return &AggregationServiceImpl{}
}

// Aggregate сводит список сообщений в статистику. Чистая, детерминированная
// и тотальная функция: пустой вход дает пустую статистику, не ошибку.
// Аккумуляторы мутируются только локально и возвращаются как готовое
// значение, наружу мутация не утекает.
func (s *AggregationServiceImpl) Aggregate(messages []domain.Message, ignoredEmojis map[string]struct{}) domain.Statistics {
	stats := domain.Statistics{
		MessageCountByUser: make(map[string]int),
		EmojiCountByUser:   make(map[string]map[string]int),
		TotalEmojiCount:    make(map[string]int),
	}

	// Порядок первой встречи каждого эмодзи, для стабильного разрешения
	// ничьих в рейтинге
	firstSeen := make(map[string]int)
	var order []string

	for _, msg := range messages {
		// Счетчик сообщений растет независимо от содержимого
		stats.MessageCountByUser[msg.Sender]++

		for _, unit := range msg.Emojis {
			if _, ignored := ignoredEmojis[unit]; ignored {
				continue
			}

			if _, seen := firstSeen[unit]; !seen {
				firstSeen[unit] = len(order)
				order = append(order, unit)
			}

			perUser := stats.EmojiCountByUser[msg.Sender]
			if perUser == nil {
				perUser = make(map[string]int)
				stats.EmojiCountByUser[msg.Sender] = perUser
			}
			perUser[unit]++
			stats.TotalEmojiCount[unit]++
		}
	}

	stats.TopEmojis = make([]domain.EmojiCount, 0, len(order))
	for _, unit := range order {
		stats.TopEmojis = append(stats.TopEmojis, domain.EmojiCount{
			Emoji: unit,
			Count: stats.TotalEmojiCount[unit],
		})
	}
	// Стабильная сортировка по убыванию: ничьи сохраняют порядок
	// первой встречи
	sort.SliceStable(stats.TopEmojis, func(i, j int) bool {
		return stats.TopEmojis[i].Count > stats.TopEmojis[j].Count
	})

	return stats
}
