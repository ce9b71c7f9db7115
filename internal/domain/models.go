package domain

import "time"

// MessageType определяет закрытое множество типов сообщений.
type MessageType string

const (
	MessageTypeText       MessageType = "text"
	MessageTypeImage      MessageType = "image"
	MessageTypeAudio      MessageType = "audio"
	MessageTypeAttachment MessageType = "attachment"
	MessageTypeCall       MessageType = "call"
	MessageTypeReaction   MessageType = "reaction"
	MessageTypeEmpty      MessageType = "empty"
)

// UnknownSender — дозволенное значение отправителя, когда извлечение
// не смогло определить имя. Никогда не пустая строка.
const UnknownSender = "Unknown"

// Message представляет одно сообщение, извлеченное из файла экспорта.
// После создания сообщение неизменяемо.
type Message struct {
	// Sender — непустое отображаемое имя отправителя.
	Sender string `json:"sender"`
	// Content — нормализованный текст сообщения. Может быть пустым
	// (например, сообщение только с изображением).
	Content string `json:"content"`
	// Timestamp — момент отправки или nil, если метку времени не удалось
	// разобрать. Никогда не приводится к "сейчас" или нулевой дате.
	Timestamp *time.Time `json:"timestamp"`
	// Emojis — упорядоченная последовательность эмодзи-единиц из Content,
	// дубликаты сохраняются позиционно.
	Emojis []string    `json:"emojis"`
	Type   MessageType `json:"type"`
}

// DateRange представляет диапазон дат переписки.
type DateRange struct {
	First *time.Time `json:"first"`
	Last  *time.Time `json:"last"`
}

// Meta содержит метаданные разобранной переписки.
type Meta struct {
	ConversationTitle string `json:"conversation_title"`
	TotalMessages     int    `json:"total_messages"`
	// Participants — участники в порядке первого появления.
	Participants []string  `json:"participants"`
	DateRange    DateRange `json:"date_range"`
	ParsedAt     time.Time `json:"parsed_at"`
}

// EmojiCount — одна запись рейтинга эмодзи.
type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// Statistics содержит агрегированную статистику, выводимую из списка
// сообщений и множества игнорируемых эмодзи. Чистая функция своих входов:
// пересчитывается заново, никогда не патчится на месте.
type Statistics struct {
	MessageCountByUser map[string]int            `json:"message_count_by_user"`
	EmojiCountByUser   map[string]map[string]int `json:"emoji_count_by_user"`
	TotalEmojiCount    map[string]int            `json:"total_emoji_count"`
	// TopEmojis отсортирован по убыванию счетчика; при равенстве
	// сохраняется порядок первой встречи.
	TopEmojis []EmojiCount `json:"top_emojis"`
}

// ParsedConversation — неизменяемый снимок результата разбора.
// Создается один раз на успешный разбор и принадлежит вызывающему.
type ParsedConversation struct {
	Meta       Meta       `json:"meta"`
	Messages   []Message  `json:"messages"`
	Statistics Statistics `json:"statistics"`
}

// WithStatistics возвращает копию снимка с замененным полем статистики.
// Сообщения и метаданные не копируются глубоко, так как они неизменяемы.
func (pc *ParsedConversation) WithStatistics(stats Statistics) *ParsedConversation {
	return &ParsedConversation{
		Meta:       pc.Meta,
		Messages:   pc.Messages,
		Statistics: stats,
	}
}
