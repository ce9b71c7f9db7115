package ports

import (
	"context"
	"instagram-chat-parser/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// DataSource определяет интерфейс для получения исходных данных экспорта.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Sanitizer определяет интерфейс для очистки недоверенной HTML-разметки
// перед любым разбором. Никогда не возвращает ошибку: испорченная разметка
// деградирует до меньшего числа найденных сообщений.
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// DocumentParser определяет интерфейс для построения дерева документа
// из очищенной разметки.
type DocumentParser interface {
	Parse(data []byte) (*goquery.Document, error)
}

// ExtractionService определяет интерфейс для извлечения сообщений
// из дерева документа.
type ExtractionService interface {
	ExtractMessages(ctx context.Context, doc *goquery.Document) ([]domain.Message, error)
}

// AggregationService определяет интерфейс для вычисления статистики
// по списку сообщений с учетом множества игнорируемых эмодзи.
type AggregationService interface {
	Aggregate(messages []domain.Message, ignoredEmojis map[string]struct{}) domain.Statistics
}

// Exporter определяет интерфейс для вывода результата.
type Exporter interface {
	// Export принимает финальный снимок переписки и выводит его.
	Export(conversation *domain.ParsedConversation) error
}
