package sanitizer

import (
	"instagram-chat-parser/internal/ports"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer реализует интерфейс Sanitizer на основе allow-list политики
// bluemonday. Все, что не перечислено явно, удаляется, а не экранируется:
// скрипты, inline-обработчики событий, embed/object/iframe и любые
// неразрешенные атрибуты. Никакой код не должен исполняться как побочный
// эффект очистки или последующего построения дерева.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer создает новый экземпляр HTMLSanitizer с политикой,
// допускающей только структурные/текстовые контейнеры, ссылки, изображения,
// аудио и элементы времени/списков из экспорта Instagram.
func NewHTMLSanitizer() ports.Sanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"html", "head", "title", "body",
		"div", "span", "p", "section", "article", "main", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"a", "img", "audio", "time", "br",
	)

	p.AllowAttrs("class").Globally()
	p.AllowAttrs("href", "target").OnElements("a")
	p.AllowAttrs("src").OnElements("img", "audio")
	p.AllowAttrs("datetime").OnElements("time")

	return &HTMLSanitizer{policy: p}
}

// Sanitize очищает недоверенную разметку. Никогда не возвращает ошибку:
// испорченный документ чинится по мере возможного и деградирует до
// меньшего числа найденных сообщений, но не до падения.
func (s *HTMLSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
