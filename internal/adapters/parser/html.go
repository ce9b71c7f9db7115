package parser

import (
	"bytes"
	"fmt"
	"instagram-chat-parser/internal/ports"

	"github.com/PuerkitoBio/goquery"
)

// HTMLParser реализует интерфейс DocumentParser для построения
// обходимого дерева из очищенной разметки.
type HTMLParser struct{}

// NewHTMLParser создает новый экземпляр HTMLParser.
func NewHTMLParser() ports.DocumentParser {
	return &HTMLParser{}
}

// Parse преобразует срез байт с разметкой в дерево документа.
// Испорченная разметка чинится парсером по мере возможного; ошибка
// возвращается только при сбое самого чтения.
func (p *HTMLParser) Parse(data []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("не удалось построить дерево документа: %w", err)
	}
	return doc, nil
}
