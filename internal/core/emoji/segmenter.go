// Package emoji группирует кодовые точки Unicode в логические эмодзи-единицы.
//
// Одна единица может занимать несколько кодовых точек: база, модификатор
// тона кожи, VS16, keycap и ZWJ-цепочки (семьи, профессии). Сканирование
// жадное, слева направо, без перекрытий: первый допустимый матч поглощает
// столько склеенных сегментов, сколько позволяет правило ZWJ-цепочки.
// Один линейный проход по кодовым точкам, откаты ограничены проверкой
// следующего джойнера или модификатора.
//
// Вход всегда должен быть декодированным текстом: сущности вида "&#128075;"
// декодируются до сегментации (см. html.UnescapeString), сегментация
// никогда не работает по экранированному тексту.
package emoji

// ExtractEmojiUnits возвращает упорядоченную последовательность подстрок
// текста, каждая из которых является одной логической эмодзи-единицей.
// Дубликаты сохраняются позиционно. Повторный запуск по той же строке
// всегда дает ту же последовательность.
func ExtractEmojiUnits(text string) []string {
	runes := []rune(text)
	var units []string

	for i := 0; i < len(runes); {
		if n := matchUnit(runes[i:]); n > 0 {
			units = append(units, string(runes[i:i+n]))
			i += n
		} else {
			i++
		}
	}

	return units
}

// matchUnit пытается сопоставить одну эмодзи-единицу в начале среза
// и возвращает число поглощенных кодовых точек (0, если матча нет).
func matchUnit(r []rune) int {
	n := matchSegment(r)
	if n == 0 {
		return 0
	}

	// ZWJ-цепочка: джойнер, затем еще один базовый сегмент. Именно это
	// правило собирает составные эмодзи (семья из четырех человек и трех
	// джойнеров) в одну единицу вместо разбиения на компоненты.
	for n < len(r) && r[n] == runeZWJ {
		m := matchSegment(r[n+1:])
		if m == 0 {
			break
		}
		n += 1 + m
	}

	return n
}

// matchSegment сопоставляет один базовый сегмент: базовую кодовую точку
// с необязательным модификатором тона кожи либо VS16 (с необязательным
// keycap). Возвращает число поглощенных кодовых точек.
func matchSegment(r []rune) int {
	if len(r) == 0 {
		return 0
	}

	// Keycap-последовательность: цифра/#/* + VS16 + combining keycap.
	// Засчитывается только целиком.
	if isKeycapBase(r[0]) {
		if len(r) >= 3 && r[1] == runeVS16 && r[2] == runeKeycap {
			return 3
		}
		return 0
	}

	// База с эмодзи-отрисовкой по умолчанию.
	if isEmojiPresentation(r[0]) {
		n := 1
		switch {
		case n < len(r) && isSkinTone(r[n]):
			n++
		case n < len(r) && r[n] == runeVS16:
			n++
			if n < len(r) && r[n] == runeKeycap {
				n++
			}
		}
		return n
	}

	// Пиктографическая база, требующая явного VS16.
	if isPictographic(r[0]) && len(r) >= 2 && r[1] == runeVS16 {
		n := 2
		if n < len(r) && r[n] == runeKeycap {
			n++
		}
		return n
	}

	return 0
}
