package exporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"instagram-chat-parser/internal/domain"
	"instagram-chat-parser/internal/ports"

	"github.com/mattn/go-runewidth"
)

// ConsoleExporter реализует интерфейс Exporter для вывода сводки в консоль.
type ConsoleExporter struct {
	out io.Writer
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter() ports.Exporter {
	return &ConsoleExporter{out: os.Stdout}
}

// Export выводит сводку по разобранной переписке в консоль.
func (e *ConsoleExporter) Export(conversation *domain.ParsedConversation) error {
	fmt.Fprintln(e.out, "--- Conversation Summary ---")
	if conversation.Meta.ConversationTitle != "" {
		fmt.Fprintf(e.out, "Title: %s\n", conversation.Meta.ConversationTitle)
	}
	fmt.Fprintf(e.out, "Messages: %d\n", conversation.Meta.TotalMessages)
	if first, last := conversation.Meta.DateRange.First, conversation.Meta.DateRange.Last; first != nil && last != nil {
		fmt.Fprintf(e.out, "Period: %s - %s\n", first.Format(time.DateOnly), last.Format(time.DateOnly))
	}

	if len(conversation.Meta.Participants) == 0 {
		fmt.Fprintln(e.out, "No participants found.")
		return nil
	}

	// Ширина колонки участника по самому длинному имени; эмодзи и
	// кириллица считаются по экранной ширине, не по байтам.
	nameColWidth := runewidth.StringWidth("Participant")
	for _, p := range conversation.Meta.Participants {
		if w := runewidth.StringWidth(p); w > nameColWidth {
			nameColWidth = w
		}
	}

	fmt.Fprintf(e.out, "| %s | Messages | Emojis |\n", padCell("Participant", nameColWidth))
	fmt.Fprintf(e.out, "|%s|----------|--------|\n", strings.Repeat("-", nameColWidth+2))
	for _, p := range conversation.Meta.Participants {
		emojiTotal := 0
		for _, n := range conversation.Statistics.EmojiCountByUser[p] {
			emojiTotal += n
		}
		fmt.Fprintf(e.out, "| %s | %8d | %6d |\n",
			padCell(p, nameColWidth),
			conversation.Statistics.MessageCountByUser[p],
			emojiTotal,
		)
	}

	if len(conversation.Statistics.TopEmojis) > 0 {
		fmt.Fprintln(e.out, "--- Top Emojis ---")
		for i, ec := range conversation.Statistics.TopEmojis {
			fmt.Fprintf(e.out, "%d. %s — %d\n", i+1, ec.Emoji, ec.Count)
		}
	}

	return nil
}

// padCell дополняет строку пробелами до заданной экранной ширины.
func padCell(s string, colWidth int) string {
	paddingNeeded := colWidth - runewidth.StringWidth(s)
	if paddingNeeded <= 0 {
		return s
	}
	return s + strings.Repeat(" ", paddingNeeded)
}
