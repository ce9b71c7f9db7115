package services

import (
	"context"
	"instagram-chat-parser/internal/core/emoji"
	"instagram-chat-parser/internal/domain"
	"instagram-chat-parser/internal/ports"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Селекторы структуры экспорта Instagram. Разметка хрупкая и ничем не
// гарантирована: при нуле совпадений извлечение возвращает пустой список,
// а не ошибку.
const (
	// primaryContainerSelector — основной селектор контейнера сообщения.
	primaryContainerSelector = "div._a6-g"
	// fallbackContainerSelector — запасной селектор для более старых выгрузок.
	fallbackContainerSelector = "div.pam"

	senderSelector    = "div._a6-h"
	contentSelector   = "div._a6-p"
	timestampSelector = "div._a6-o"
)

// systemPrefixes — известные префиксы служебных сообщений. При выборе
// содержимого такие кандидаты пропускаются, но не удаляются, если другого
// кандидата нет.
var systemPrefixes = []string{
	"sent an attachment",
	"liked a message",
	"started an audio call",
	"audio call ended",
	"missed an audio call",
}

// timestampLayouts — цепочка форматов метки времени экспорта. Явные
// форматы, без угадывания: неоднозначные числовые записи вроде
// "01/02/2024" отклоняются, а не интерпретируются.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Jan 2, 2006 3:04 pm",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006, 3:04 pm",
	"Jan 2, 2006, 3:04 PM",
	"Jan 2, 2006 3:04:05 pm",
	"Jan 2, 2006, 3:04:05 PM",
}

// ExtractionServiceImpl реализует интерфейс ExtractionService.
type ExtractionServiceImpl struct{}

// NewExtractionService создает новый экземпляр ExtractionServiceImpl.
func NewExtractionService() ports.ExtractionService {
	return &ExtractionServiceImpl{}
}

// ExtractMessages обходит дерево документа и извлекает сообщения.
// Сбой извлечения полей одного контейнера приводит к отбрасыванию только
// этого контейнера и никогда не прерывает извлечение целиком. Контекст
// проверяется между итерациями по контейнерам: это единственная
// естественная точка прерывания.
func (s *ExtractionServiceImpl) ExtractMessages(ctx context.Context, doc *goquery.Document) ([]domain.Message, error) {
	containers := doc.Find(primaryContainerSelector)
	if containers.Length() == 0 {
		containers = doc.Find(fallbackContainerSelector)
	}

	var messages []domain.Message
	dropped := 0

	containers.EachWithBreak(func(_ int, container *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}

		msg, ok := s.extractOne(container)
		if !ok {
			dropped++
			return true
		}
		messages = append(messages, msg)
		return true
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if dropped > 0 {
		slog.Debug("Часть контейнеров отброшена при извлечении", "dropped", dropped, "extracted", len(messages))
	}

	return messages, nil
}

// extractOne извлекает одно сообщение из контейнера. Любая паника при
// извлечении полей гасится локально и деградирует до отбрасывания
// этого одного сообщения.
func (s *ExtractionServiceImpl) extractOne(container *goquery.Selection) (msg domain.Message, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Паника при извлечении сообщения, контейнер отброшен", "cause", r)
			ok = false
		}
	}()

	// Сообщение без определимого отправителя не эмитится вовсе:
	// осознанный выбор точности в ущерб полноте.
	sender := normalizeText(container.Find(senderSelector).First().Text())
	if sender == "" {
		return domain.Message{}, false
	}

	content := s.extractContent(container)
	timestamp := s.extractTimestamp(container)
	msgType := classifyMessage(container, content)

	return domain.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: timestamp,
		Emojis:    emoji.ExtractEmojiUnits(content),
		Type:      msgType,
	}, true
}

// extractContent выбирает текст первого неслужебного текстоносного
// потомка блока содержимого. Служебный текст пропускается при выборе,
// но используется, если он единственный кандидат.
func (s *ExtractionServiceImpl) extractContent(container *goquery.Selection) string {
	block := container.Find(contentSelector).First()
	if block.Length() == 0 {
		return ""
	}

	var candidates []string
	block.Children().Each(func(_ int, child *goquery.Selection) {
		if txt := normalizeText(child.Text()); txt != "" {
			candidates = append(candidates, txt)
		}
	})

	if len(candidates) == 0 {
		return normalizeText(block.Text())
	}

	for _, c := range candidates {
		if !hasSystemPrefix(c) {
			return c
		}
	}
	return candidates[0]
}

// extractTimestamp разбирает метку времени через цепочку форматов.
// Неразбираемый текст дает nil, не ошибку и не дату по умолчанию.
func (s *ExtractionServiceImpl) extractTimestamp(container *goquery.Selection) *time.Time {
	block := container.Find(timestampSelector).First()
	if block.Length() == 0 {
		return nil
	}

	// Машиночитаемый атрибут предпочтительнее локализованного текста
	if attr, exists := block.Find("time").First().Attr("datetime"); exists {
		if ts := parseTimestamp(attr); ts != nil {
			return ts
		}
	}

	return parseTimestamp(normalizeText(block.Text()))
}

func parseTimestamp(text string) *time.Time {
	if text == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return &ts
		}
	}
	return nil
}

// classifyMessage присваивает ровно один тег типа. Порядок проверок
// фиксирован, первый совпавший побеждает.
func classifyMessage(container *goquery.Selection, content string) domain.MessageType {
	lower := strings.ToLower(content)

	switch {
	case strings.Contains(lower, "sent an attachment"):
		return domain.MessageTypeAttachment
	case strings.Contains(lower, "audio call"):
		return domain.MessageTypeCall
	case strings.Contains(lower, "liked a message"):
		return domain.MessageTypeReaction
	case container.Find("img").Length() > 0:
		return domain.MessageTypeImage
	case container.Find("audio").Length() > 0:
		return domain.MessageTypeAudio
	case content == "":
		return domain.MessageTypeEmpty
	default:
		return domain.MessageTypeText
	}
}

// hasSystemPrefix распознает служебные фразы. Фраза может начинаться
// с имени отправителя ("Alice sent an attachment."), поэтому проверка
// по вхождению, а не только по началу строки.
func hasSystemPrefix(text string) bool {
	lower := strings.ToLower(text)
	for _, prefix := range systemPrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

// normalizeText схлопывает пробельные последовательности и убирает
// невидимые управляющие метки направления. Джойнеры и селекторы вариантов
// не трогаем: они входят в состав эмодзи-единиц.
func normalizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200e', '\u200f', '\ufeff':
			return -1
		default:
			return r
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
