package source

import (
	"instagram-chat-parser/internal/ports"
	"os"

	"golang.org/x/xerrors"
)

// DefaultMaxFileSize — потолок размера файла экспорта: 50 MiB включительно.
// Ровно на потолке файл принимается, на байт больше отклоняется до того,
// как начнется любой разбор.
const DefaultMaxFileSize = 50 << 20

// FileSource реализует интерфейс DataSource для чтения файла экспорта
// с диска с проверкой размера до чтения содержимого.
type FileSource struct {
	filePath string
	maxSize  int64
}

// NewFileSource создает новый экземпляр FileSource с потолком по умолчанию.
func NewFileSource(filePath string) ports.DataSource {
	return NewFileSourceWithLimit(filePath, DefaultMaxFileSize)
}

// NewFileSourceWithLimit создает FileSource с явным потолком размера в байтах.
func NewFileSourceWithLimit(filePath string, maxSize int64) ports.DataSource {
	return &FileSource{filePath: filePath, maxSize: maxSize}
}

// Fetch читает файл по указанному пути и возвращает его содержимое.
// Превышение потолка размера фатально для всего разбора.
func (s *FileSource) Fetch() ([]byte, error) {
	if s.filePath == "" {
		return nil, xerrors.New("не указан путь к файлу")
	}

	info, err := os.Stat(s.filePath)
	if err != nil {
		return nil, xerrors.Errorf("не удалось открыть файл %s: %w", s.filePath, err)
	}

	if info.Size() > s.maxSize {
		return nil, xerrors.Errorf("файл %s превышает потолок размера: %d > %d байт", s.filePath, info.Size(), s.maxSize)
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, xerrors.Errorf("failed to read file %s: %w", s.filePath, err)
	}

	return data, nil
}
