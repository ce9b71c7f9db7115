package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"instagram-chat-parser/internal/adapters/exporter"
	"instagram-chat-parser/internal/domain"
)

type TaskStatusResponse struct {
	TaskID       string `json:"task_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func main() {
	var serverAddr string
	var ignoredEmojis string
	var xlsxPath string
	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "Server address")
	flag.StringVar(&ignoredEmojis, "ignore", "", "Comma-separated emojis to exclude from statistics")
	flag.StringVar(&xlsxPath, "xlsx", "", "Write an xlsx report to the given path")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Exactly one file path is required. Usage: client [flags] <export.html>")
	}
	filePath := flag.Arg(0)

	// Создание многочастной формы для загрузки файла
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	file, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("Не удалось открыть файл %s: %v", filePath, err)
	}

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		_ = file.Close()
		log.Fatalf("Не удалось создать файл формы для %s: %v", filePath, err)
	}

	if _, err := io.Copy(part, file); err != nil {
		_ = file.Close()
		log.Fatalf("Не удалось записать данные файла %s: %v", filePath, err)
	}
	if err := file.Close(); err != nil {
		log.Printf("Warning: failed to close file %s: %v", filePath, err)
	}

	// Важно закрыть writer, чтобы записать завершающую границу
	if err := writer.Close(); err != nil {
		log.Fatalf("Не удалось закрыть multipart writer: %v", err)
	}

	// Отправка файла на сервер
	resp, err := http.Post(serverAddr+"/api/v1/parse", writer.FormDataContentType(), &body)
	if err != nil {
		log.Fatalf("Не удалось отправить запрос: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		log.Fatalf("Сервер вернул статус: %d", resp.StatusCode)
	}

	// Разбор идентификатора задачи из ответа
	var taskResp map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&taskResp); err != nil {
		log.Fatalf("Не удалось декодировать ответ: %v", err)
	}
	taskID := taskResp["task_id"]
	if taskID == "" {
		log.Fatal("Идентификатор задачи не найден в ответе")
	}

	fmt.Printf("Задача создана с идентификатором: %s\n", taskID)

	// Опрос о статусе задачи
	for {
		time.Sleep(2 * time.Second) // Ожидание перед следующим опросом

		resp, err := http.Get(fmt.Sprintf("%s/api/v1/tasks/%s", serverAddr, taskID))
		if err != nil {
			log.Fatalf("Не удалось опросить статус задачи: %v", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			log.Fatalf("Сервер вернул статус: %d", resp.StatusCode)
		}

		var statusResp TaskStatusResponse
		err = json.NewDecoder(resp.Body).Decode(&statusResp)
		resp.Body.Close()
		if err != nil {
			log.Fatalf("Не удалось декодировать ответ статуса: %v", err)
		}

		fmt.Printf("Статус задачи: %s\n", statusResp.Status)

		switch statusResp.Status {
		case "completed":
			fmt.Println("Задача выполнена успешно.")

			// Пересчет статистики с игнорируемыми эмодзи, если заданы
			if ignoredEmojis != "" {
				recomputeStatistics(serverAddr, taskID, ignoredEmojis)
			}

			// Получение и вывод результата.
			resultResp, err := http.Get(fmt.Sprintf("%s/api/v1/tasks/%s/result", serverAddr, taskID))
			if err != nil {
				log.Fatalf("Не удалось получить результат: %v", err)
			}
			defer resultResp.Body.Close()

			if resultResp.StatusCode != http.StatusOK {
				log.Fatalf("Сервер вернул статус для результата: %d", resultResp.StatusCode)
			}

			var conversation domain.ParsedConversation
			if err := json.NewDecoder(resultResp.Body).Decode(&conversation); err != nil {
				log.Fatalf("Не удалось декодировать результат: %v", err)
			}

			if err := exporter.NewConsoleExporter().Export(&conversation); err != nil {
				log.Fatalf("Не удалось вывести сводку: %v", err)
			}

			if xlsxPath != "" {
				if err := exporter.NewExcelExporter(xlsxPath).Export(&conversation); err != nil {
					log.Fatalf("Не удалось записать xlsx-отчет: %v", err)
				}
				fmt.Printf("Отчет записан в %s\n", xlsxPath)
			}
			return
		case "failed":
			fmt.Printf("Задача не выполнена: %s\n", statusResp.ErrorMessage)
			os.Exit(1)
		case "pending", "processing":
			// Продолжение опроса
			continue
		default:
			log.Fatalf("Неизвестный статус задачи: %s", statusResp.Status)
		}
	}
}

// recomputeStatistics просит сервер пересчитать статистику без указанных эмодзи.
func recomputeStatistics(serverAddr, taskID, ignoredEmojis string) {
	payload := struct {
		IgnoredEmojis []string `json:"ignored_emojis"`
	}{
		IgnoredEmojis: strings.Split(ignoredEmojis, ","),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("Не удалось сериализовать список эмодзи: %v", err)
	}

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/tasks/%s/statistics", serverAddr, taskID),
		"application/json",
		bytes.NewReader(data),
	)
	if err != nil {
		log.Fatalf("Не удалось запросить пересчет статистики: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Сервер вернул статус для пересчета: %d", resp.StatusCode)
	}

	fmt.Printf("Статистика пересчитана без эмодзи: %s\n", ignoredEmojis)
}
