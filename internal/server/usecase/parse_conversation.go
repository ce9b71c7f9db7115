package usecase

import (
	"context"
	"fmt"
	"instagram-chat-parser/internal/adapters/source"
	"instagram-chat-parser/internal/cache"
	"instagram-chat-parser/internal/domain"
	"instagram-chat-parser/internal/pkg/config"
	"instagram-chat-parser/internal/ports"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ParseConversationUseCase инкапсулирует бизнес-логику конвейера разбора:
// сырые байты → очищенная разметка → дерево документа → список сообщений →
// статистика. Каждая стадия производит новую неизменяемую структуру,
// потребляемую следующей; между разборами нет разделяемого состояния.
type ParseConversationUseCase struct {
	cfg        *config.Config
	sanitizer  ports.Sanitizer
	parser     ports.DocumentParser
	extractor  ports.ExtractionService
	aggregator ports.AggregationService
	cacheStore *cache.CacheStore
}

// NewParseConversationUseCase создает новый экземпляр ParseConversationUseCase.
func NewParseConversationUseCase(
	cfg *config.Config,
	sanitizer ports.Sanitizer,
	parser ports.DocumentParser,
	extractor ports.ExtractionService,
	aggregator ports.AggregationService,
	cacheStore *cache.CacheStore,
) *ParseConversationUseCase {
	return &ParseConversationUseCase{
		cfg:        cfg,
		sanitizer:  sanitizer,
		parser:     parser,
		extractor:  extractor,
		aggregator: aggregator,
		cacheStore: cacheStore,
	}
}

// ParseFile разбирает файл экспорта по пути. Потолок размера проверяется
// источником до того, как любой разбор начнется.
func (uc *ParseConversationUseCase) ParseFile(ctx context.Context, filePath string) (*domain.ParsedConversation, error) {
	slog.Info("Обработка файла экспорта", "path", filePath)

	ds := source.NewFileSourceWithLimit(filePath, uc.cfg.Parsing.MaxUploadSize())
	data, err := ds.Fetch()
	if err != nil {
		return nil, fmt.Errorf("не удалось извлечь данные из %s: %w", filePath, err)
	}

	return uc.ParseData(ctx, data)
}

// ParseData прогоняет сырые байты через весь конвейер. Фатальные ошибки
// (построение дерева, отмена контекста) возвращаются одной обернутой
// ошибкой без частичного результата; сбои отдельных сообщений гасятся
// внутри извлечения.
func (uc *ParseConversationUseCase) ParseData(ctx context.Context, data []byte) (*domain.ParsedConversation, error) {
	contentHash := cache.CalculateHash(data)
	if cachedItem, found := uc.cacheStore.Get(contentHash); found {
		slog.Info("Попадание в кеш для содержимого файла", "hash", contentHash)
		return cachedItem.Data, nil
	}

	clean := uc.sanitizer.Sanitize(string(data))

	doc, err := uc.parser.Parse([]byte(clean))
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать документ: %w", err)
	}

	messages, err := uc.extractor.ExtractMessages(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("не удалось извлечь сообщения: %w", err)
	}
	slog.Info("Извлечены сообщения", "count", len(messages))

	stats := uc.aggregator.Aggregate(messages, nil)

	conversation := &domain.ParsedConversation{
		Meta:       buildMeta(doc, messages),
		Messages:   messages,
		Statistics: stats,
	}

	uc.cacheStore.Put(contentHash, conversation, uc.cfg.Parsing.CacheTTL())
	slog.Info("Разбор успешно завершен",
		"messages", conversation.Meta.TotalMessages,
		"participants", len(conversation.Meta.Participants),
	)

	return conversation, nil
}

// RecomputeStatistics пересчитывает статистику по неизменному списку
// сообщений с новым множеством игнорируемых эмодзи. Возвращает новый
// снимок с замененным полем статистики; сообщения не мутируются.
func (uc *ParseConversationUseCase) RecomputeStatistics(conversation *domain.ParsedConversation, ignoredEmojis map[string]struct{}) *domain.ParsedConversation {
	return conversation.WithStatistics(uc.aggregator.Aggregate(conversation.Messages, ignoredEmojis))
}

// buildMeta собирает метаданные переписки из дерева и списка сообщений.
func buildMeta(doc *goquery.Document, messages []domain.Message) domain.Meta {
	meta := domain.Meta{
		ConversationTitle: doc.Find("title").First().Text(),
		TotalMessages:     len(messages),
		ParsedAt:          time.Now(),
	}

	// Участники в порядке первого появления
	seen := make(map[string]bool)
	for _, msg := range messages {
		if !seen[msg.Sender] {
			seen[msg.Sender] = true
			meta.Participants = append(meta.Participants, msg.Sender)
		}
	}

	for i := range messages {
		ts := messages[i].Timestamp
		if ts == nil {
			continue
		}
		if meta.DateRange.First == nil || ts.Before(*meta.DateRange.First) {
			meta.DateRange.First = ts
		}
		if meta.DateRange.Last == nil || ts.After(*meta.DateRange.Last) {
			meta.DateRange.Last = ts
		}
	}

	return meta
}
