package exporter

import (
	"fmt"
	"time"

	"instagram-chat-parser/internal/domain"
	"instagram-chat-parser/internal/ports"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter реализует интерфейс Exporter, записывая отчет в xlsx-файл.
type ExcelExporter struct {
	outputPath string
}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter(outputPath string) ports.Exporter {
	return &ExcelExporter{outputPath: outputPath}
}

// Export записывает статистику переписки в xlsx-файл с двумя листами:
// счетчики сообщений по участникам и топ эмодзи.
func (e *ExcelExporter) Export(conversation *domain.ParsedConversation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeParticipantsSheet(f, conversation); err != nil {
		return err
	}
	if err := e.writeTopEmojiSheet(f, conversation); err != nil {
		return err
	}

	// Лист по умолчанию "Sheet1" больше не нужен
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(e.outputPath); err != nil {
		return fmt.Errorf("не удалось сохранить xlsx-файл %s: %w", e.outputPath, err)
	}
	return nil
}

func (e *ExcelExporter) writeParticipantsSheet(f *excelize.File, conversation *domain.ParsedConversation) error {
	sheetName := "Участники"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("не удалось создать лист %s: %w", sheetName, err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Дата экспорта", "Участник", "Сообщений", "Эмодзи"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	exportDate := time.Now().Format(time.RFC3339)
	for i, participant := range conversation.Meta.Participants {
		emojiTotal := 0
		for _, n := range conversation.Statistics.EmojiCountByUser[participant] {
			emojiTotal += n
		}

		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), exportDate)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), participant)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), conversation.Statistics.MessageCountByUser[participant])
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), emojiTotal)
	}
	return nil
}

func (e *ExcelExporter) writeTopEmojiSheet(f *excelize.File, conversation *domain.ParsedConversation) error {
	sheetName := "Топ эмодзи"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("не удалось создать лист %s: %w", sheetName, err)
	}

	headers := []string{"Место", "Эмодзи", "Счетчик"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for i, ec := range conversation.Statistics.TopEmojis {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), ec.Emoji)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), ec.Count)
	}
	return nil
}
