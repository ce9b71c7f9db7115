package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"instagram-chat-parser/internal/cache"
	"instagram-chat-parser/internal/domain"
	"instagram-chat-parser/internal/pkg/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ConversationProcessor определяет интерфейс для варианта использования, который разбирает экспорты.
type ConversationProcessor interface {
	ParseFile(ctx context.Context, filePath string) (*domain.ParsedConversation, error)
	RecomputeStatistics(conversation *domain.ParsedConversation, ignoredEmojis map[string]struct{}) *domain.ParsedConversation
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	taskStore  *TaskStore
	cacheStore *cache.CacheStore
	processor  ConversationProcessor
}

// New создает новый экземпляр Server
func New(cfg *config.Config, processor ConversationProcessor, taskStore *TaskStore, cacheStore *cache.CacheStore) (*Server, error) {
	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})

	// Маршруты API
	chiRouter.Route("/api/v1", func(r chi.Router) {
		// Конечная точка для запуска новой задачи разбора
		r.Post("/parse", func(w http.ResponseWriter, r *http.Request) {
			// Потолок размера действует уже на уровне формы; точная
			// проверка выполняется источником перед разбором.
			if err := r.ParseMultipartForm(cfg.Parsing.MaxUploadSize()); err != nil {
				http.Error(w, "Не удалось разобрать форму", http.StatusBadRequest)
				return
			}

			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "Не удалось получить файл из формы", http.StatusBadRequest)
				return
			}
			defer file.Close()

			// Генерация уникального идентификатора задачи
			taskID := uuid.NewString()

			// Создание временного файла для хранения загруженных данных
			tempFilePath := filepath.Join(os.TempDir(), fmt.Sprintf("conversation_%s.html", taskID))

			out, err := os.Create(tempFilePath)
			if err != nil {
				http.Error(w, "Не удалось создать временный файл", http.StatusInternalServerError)
				return
			}
			defer out.Close()

			if _, err := io.Copy(out, file); err != nil {
				http.Error(w, "Не удалось сохранить загруженный файл", http.StatusInternalServerError)
				return
			}

			// Создание задачи в хранилище
			taskStore.CreateTask(taskID, 24*time.Hour) // TTL для записи о задаче

			// Запуск разбора в горутине
			go func() {
				taskStore.UpdateTaskStatus(taskID, TaskStatusProcessing)
				defer os.Remove(tempFilePath)

				// Контекст задачи с таймаутом из конфигурации.
				taskCtx := context.Background()
				if timeout := cfg.Parsing.TaskTimeout(); timeout > 0 {
					var cancel context.CancelFunc
					taskCtx, cancel = context.WithTimeout(taskCtx, timeout)
					defer cancel()
				}

				result, err := processor.ParseFile(taskCtx, tempFilePath)
				if err != nil {
					slog.Error("Разбор экспорта завершился ошибкой", "task_id", taskID, "error", err)
					taskStore.UpdateTaskError(taskID, err.Error())
					return
				}

				taskStore.UpdateTaskResult(taskID, result)
			}()

			// Возврат идентификатора задачи
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"task_id": taskID})
		})

		// Конечная точка для проверки статуса задачи
		r.Get("/tasks/{taskID}", func(w http.ResponseWriter, r *http.Request) {
			taskID := chi.URLParam(r, "taskID")

			task, err := taskStore.GetTask(taskID)
			if err != nil {
				http.Error(w, "Задача не найдена", http.StatusNotFound)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"task_id":       task.ID,
				"status":        task.Status,
				"error_message": task.ErrorMessage,
			})
		})

		// Конечная точка для получения результата задачи
		r.Get("/tasks/{taskID}/result", func(w http.ResponseWriter, r *http.Request) {
			taskID := chi.URLParam(r, "taskID")

			task, err := taskStore.GetTask(taskID)
			if err != nil {
				http.Error(w, "Задача не найдена", http.StatusNotFound)
				return
			}

			if task.Status != TaskStatusCompleted {
				http.Error(w, "Задача не завершена", http.StatusBadRequest)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(task.Result)
		})

		// Конечная точка для пересчета статистики с множеством игнорируемых эмодзи.
		// Сообщения разобранного результата не трогаются: задача получает
		// новый снимок с замененной статистикой.
		r.Post("/tasks/{taskID}/statistics", func(w http.ResponseWriter, r *http.Request) {
			taskID := chi.URLParam(r, "taskID")

			task, err := taskStore.GetTask(taskID)
			if err != nil {
				http.Error(w, "Задача не найдена", http.StatusNotFound)
				return
			}

			if task.Status != TaskStatusCompleted {
				http.Error(w, "Задача не завершена", http.StatusBadRequest)
				return
			}

			var req struct {
				IgnoredEmojis []string `json:"ignored_emojis"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Не удалось декодировать тело запроса", http.StatusBadRequest)
				return
			}

			ignored := make(map[string]struct{}, len(req.IgnoredEmojis))
			for _, e := range req.IgnoredEmojis {
				ignored[e] = struct{}{}
			}

			updated := processor.RecomputeStatistics(task.Result, ignored)
			taskStore.UpdateTaskResult(taskID, updated)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(updated.Statistics)
		})
	})

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s := &Server{
		HTTPServer: httpServer,
		cfg:        cfg,
		taskStore:  taskStore,
		cacheStore: cacheStore,
		processor:  processor,
	}

	// Тикеры для очистки просроченных задач и элементов кеша.
	// Жизненный цикл привязан к контексту процесса: тикеры живут,
	// пока живет сервер.
	ctx := context.Background()
	s.taskStore.StartCleanupTicker(ctx, 1*time.Hour)
	s.cacheStore.StartCleanupTicker(ctx, 1*time.Hour)

	return s, nil
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}
