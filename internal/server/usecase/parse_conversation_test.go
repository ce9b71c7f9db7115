package usecase

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"instagram-chat-parser/internal/cache"
	"instagram-chat-parser/internal/domain"
	"instagram-chat-parser/internal/pkg/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mocks for dependencies
type mockSanitizer struct{ mock.Mock }

func (m *mockSanitizer) Sanitize(input string) string {
	args := m.Called(input)
	return args.String(0)
}

type mockDocParser struct{ mock.Mock }

func (m *mockDocParser) Parse(data []byte) (*goquery.Document, error) {
	args := m.Called(data)
	if res := args.Get(0); res != nil {
		return res.(*goquery.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) ExtractMessages(ctx context.Context, doc *goquery.Document) ([]domain.Message, error) {
	args := m.Called(ctx, doc)
	if res := args.Get(0); res != nil {
		return res.([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAggregator struct{ mock.Mock }

func (m *mockAggregator) Aggregate(messages []domain.Message, ignoredEmojis map[string]struct{}) domain.Statistics {
	args := m.Called(messages, ignoredEmojis)
	return args.Get(0).(domain.Statistics)
}

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "export-*.html")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

func TestParseConversationUseCase(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Parsing: config.Parsing{MaxUploadSizeMB: 50, CacheTTLMinutes: 10}}

	ts1 := time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)
	ts2 := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	sampleMessages := []domain.Message{
		{Sender: "Alice", Content: "Hey! \U0001F44B", Timestamp: &ts2, Emojis: []string{"\U0001F44B"}, Type: domain.MessageTypeText},
		{Sender: "Bob", Content: "Hi", Timestamp: &ts1, Type: domain.MessageTypeText},
		{Sender: "Alice", Content: "sent an attachment.", Type: domain.MessageTypeAttachment},
	}
	sampleStats := domain.Statistics{
		MessageCountByUser: map[string]int{"Alice": 2, "Bob": 1},
		TotalEmojiCount:    map[string]int{"\U0001F44B": 1},
	}

	t.Run("Успешный проход конвейера", func(t *testing.T) {
		sanitizer := new(mockSanitizer)
		parser := new(mockDocParser)
		extractor := new(mockExtractor)
		aggregator := new(mockAggregator)
		cacheStore := cache.NewCacheStore()
		uc := NewParseConversationUseCase(cfg, sanitizer, parser, extractor, aggregator, cacheStore)

		raw := []byte("<html><title>Alice and Bob</title></html>")
		doc := docFromString(t, string(raw))
		sanitizer.On("Sanitize", string(raw)).Return(string(raw)).Once()
		parser.On("Parse", raw).Return(doc, nil).Once()
		extractor.On("ExtractMessages", ctx, doc).Return(sampleMessages, nil).Once()
		aggregator.On("Aggregate", sampleMessages, map[string]struct{}(nil)).Return(sampleStats).Once()

		conv, err := uc.ParseData(ctx, raw)
		require.NoError(t, err)
		require.NotNil(t, conv)

		assert.Equal(t, "Alice and Bob", conv.Meta.ConversationTitle)
		assert.Equal(t, 3, conv.Meta.TotalMessages)
		// Участники в порядке первого появления
		assert.Equal(t, []string{"Alice", "Bob"}, conv.Meta.Participants)
		// Диапазон дат игнорирует сообщения без отметки времени
		require.NotNil(t, conv.Meta.DateRange.First)
		require.NotNil(t, conv.Meta.DateRange.Last)
		assert.Equal(t, ts1, *conv.Meta.DateRange.First)
		assert.Equal(t, ts2, *conv.Meta.DateRange.Last)
		assert.Equal(t, sampleStats, conv.Statistics)
		assert.WithinDuration(t, time.Now(), conv.Meta.ParsedAt, time.Second)

		sanitizer.AssertExpectations(t)
		parser.AssertExpectations(t)
		extractor.AssertExpectations(t)
		aggregator.AssertExpectations(t)
	})

	t.Run("Повторный разбор того же содержимого попадает в кеш", func(t *testing.T) {
		sanitizer := new(mockSanitizer)
		parser := new(mockDocParser)
		extractor := new(mockExtractor)
		aggregator := new(mockAggregator)
		cacheStore := cache.NewCacheStore()
		uc := NewParseConversationUseCase(cfg, sanitizer, parser, extractor, aggregator, cacheStore)

		raw := []byte("<html><title>t</title></html>")
		doc := docFromString(t, string(raw))
		sanitizer.On("Sanitize", string(raw)).Return(string(raw)).Once()
		parser.On("Parse", raw).Return(doc, nil).Once()
		extractor.On("ExtractMessages", ctx, doc).Return(sampleMessages, nil).Once()
		aggregator.On("Aggregate", sampleMessages, map[string]struct{}(nil)).Return(sampleStats).Once()

		first, err := uc.ParseData(ctx, raw)
		require.NoError(t, err)

		second, err := uc.ParseData(ctx, raw)
		require.NoError(t, err)
		assert.Same(t, first, second)

		// Стадии конвейера вызваны только один раз
		sanitizer.AssertExpectations(t)
		parser.AssertExpectations(t)
		extractor.AssertExpectations(t)
		aggregator.AssertExpectations(t)
	})

	t.Run("Ошибка построения дерева фатальна", func(t *testing.T) {
		sanitizer := new(mockSanitizer)
		parser := new(mockDocParser)
		cacheStore := cache.NewCacheStore()
		uc := NewParseConversationUseCase(cfg, sanitizer, parser, new(mockExtractor), new(mockAggregator), cacheStore)

		raw := []byte("broken")
		sanitizer.On("Sanitize", string(raw)).Return(string(raw)).Once()
		parser.On("Parse", raw).Return(nil, errors.New("bad document")).Once()

		_, err := uc.ParseData(ctx, raw)
		assert.Error(t, err)
	})

	t.Run("Ошибка извлечения фатальна", func(t *testing.T) {
		sanitizer := new(mockSanitizer)
		parser := new(mockDocParser)
		extractor := new(mockExtractor)
		cacheStore := cache.NewCacheStore()
		uc := NewParseConversationUseCase(cfg, sanitizer, parser, extractor, new(mockAggregator), cacheStore)

		raw := []byte("<html></html>")
		doc := docFromString(t, string(raw))
		sanitizer.On("Sanitize", string(raw)).Return(string(raw)).Once()
		parser.On("Parse", raw).Return(doc, nil).Once()
		extractor.On("ExtractMessages", ctx, doc).Return(nil, context.Canceled).Once()

		_, err := uc.ParseData(ctx, raw)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ParseFile читает файл и прогоняет конвейер", func(t *testing.T) {
		sanitizer := new(mockSanitizer)
		parser := new(mockDocParser)
		extractor := new(mockExtractor)
		aggregator := new(mockAggregator)
		cacheStore := cache.NewCacheStore()
		uc := NewParseConversationUseCase(cfg, sanitizer, parser, extractor, aggregator, cacheStore)

		content := "<html><title>f</title></html>"
		filePath := createTempFile(t, content)
		doc := docFromString(t, content)
		sanitizer.On("Sanitize", content).Return(content).Once()
		parser.On("Parse", []byte(content)).Return(doc, nil).Once()
		extractor.On("ExtractMessages", ctx, doc).Return([]domain.Message{}, nil).Once()
		aggregator.On("Aggregate", []domain.Message{}, map[string]struct{}(nil)).Return(domain.Statistics{}).Once()

		conv, err := uc.ParseFile(ctx, filePath)
		require.NoError(t, err)
		assert.Equal(t, 0, conv.Meta.TotalMessages)
	})

	t.Run("ParseFile отвергает несуществующий файл", func(t *testing.T) {
		uc := NewParseConversationUseCase(cfg, new(mockSanitizer), new(mockDocParser), new(mockExtractor), new(mockAggregator), cache.NewCacheStore())
		_, err := uc.ParseFile(ctx, "/no/such/file.html")
		assert.Error(t, err)
	})
}

func TestRecomputeStatistics(t *testing.T) {
	cfg := &config.Config{Parsing: config.Parsing{MaxUploadSizeMB: 50, CacheTTLMinutes: 10}}
	aggregator := new(mockAggregator)
	uc := NewParseConversationUseCase(cfg, new(mockSanitizer), new(mockDocParser), new(mockExtractor), aggregator, cache.NewCacheStore())

	messages := []domain.Message{
		{Sender: "Alice", Content: "\U0001F60A", Emojis: []string{"\U0001F60A"}, Type: domain.MessageTypeText},
	}
	original := &domain.ParsedConversation{
		Messages: messages,
		Statistics: domain.Statistics{
			MessageCountByUser: map[string]int{"Alice": 1},
			TotalEmojiCount:    map[string]int{"\U0001F60A": 1},
		},
	}

	ignored := map[string]struct{}{"\U0001F60A": {}}
	recomputedStats := domain.Statistics{
		MessageCountByUser: map[string]int{"Alice": 1},
		TotalEmojiCount:    map[string]int{},
	}
	aggregator.On("Aggregate", messages, ignored).Return(recomputedStats).Once()

	updated := uc.RecomputeStatistics(original, ignored)

	assert.Equal(t, recomputedStats, updated.Statistics)
	// Исходный снимок не мутирован, сообщения разделяются
	assert.Equal(t, map[string]int{"\U0001F60A": 1}, original.Statistics.TotalEmojiCount)
	assert.Equal(t, original.Messages, updated.Messages)
	aggregator.AssertExpectations(t)
}
