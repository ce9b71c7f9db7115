package services

import (
	"fmt"
	"instagram-chat-parser/internal/domain"
	"sort"
)

// Преобразования статистики в готовые для визуализации ряды.
// Все функции чистые, без состояния и тотальные на своей области:
// пустой вход дает пустые (или нулевые фиксированные) ряды, не панику.

// Series — параллельные массивы подписей и значений одного ряда.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// UserSeries — числовой ряд одного отправителя.
type UserSeries struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

// MultiSeries — несколько рядов, выровненных по общему набору подписей.
type MultiSeries struct {
	Labels []string     `json:"labels"`
	Users  []UserSeries `json:"users"`
}

// TimeBucket задает гранулярность временной корзины.
type TimeBucket string

const (
	BucketHour  TimeBucket = "hour"
	BucketDay   TimeBucket = "day"
	BucketWeek  TimeBucket = "week"
	BucketMonth TimeBucket = "month"
)

// weekdayLabels — фиксированные 7 корзин, начиная с понедельника.
var weekdayLabels = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// MessageCountSeries строит ряд числа сообщений по отправителям,
// по убыванию счетчика; ничьи упорядочены по имени для детерминизма.
func MessageCountSeries(stats domain.Statistics) Series {
	names := make([]string, 0, len(stats.MessageCountByUser))
	for name := range stats.MessageCountByUser {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := stats.MessageCountByUser[names[i]], stats.MessageCountByUser[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	s := Series{Labels: make([]string, 0, len(names)), Data: make([]int, 0, len(names))}
	for _, name := range names {
		s.Labels = append(s.Labels, name)
		s.Data = append(s.Data, stats.MessageCountByUser[name])
	}
	return s
}

// TopEmojiSeries строит ряд первых limit эмодзи рейтинга. Фильтрация по
// множеству игнорируемых происходит до отсечения топа, а не после: вычеркнутое
// эмодзи никогда не занимает слот, вытесняя настоящую запись.
func TopEmojiSeries(stats domain.Statistics, ignoredEmojis map[string]struct{}, limit int) Series {
	s := Series{Labels: []string{}, Data: []int{}}
	if limit <= 0 {
		return s
	}

	for _, entry := range stats.TopEmojis {
		if _, ignored := ignoredEmojis[entry.Emoji]; ignored {
			continue
		}
		s.Labels = append(s.Labels, entry.Emoji)
		s.Data = append(s.Data, entry.Count)
		if len(s.Labels) == limit {
			break
		}
	}
	return s
}

// TimelineSeries строит ряд числа сообщений по временным корзинам.
// Ключи корзин дополнены нулями, поэтому лексикографическая сортировка
// совпадает с хронологической. Сообщения без метки времени пропускаются.
func TimelineSeries(messages []domain.Message, bucket TimeBucket) Series {
	counts := make(map[string]int)
	for _, msg := range messages {
		if msg.Timestamp == nil {
			continue
		}
		counts[bucketKey(msg, bucket)]++
	}

	keys := sortedKeys(counts)
	s := Series{Labels: keys, Data: make([]int, 0, len(keys))}
	for _, k := range keys {
		s.Data = append(s.Data, counts[k])
	}
	return s
}

// WeekdayHistogram строит гистограмму по дням недели: всегда ровно
// 7 корзин, включая нулевые.
func WeekdayHistogram(messages []domain.Message) Series {
	data := make([]int, 7)
	for _, msg := range messages {
		if msg.Timestamp == nil {
			continue
		}
		// time.Weekday начинается с воскресенья, подписи с понедельника
		idx := (int(msg.Timestamp.Weekday()) + 6) % 7
		data[idx]++
	}
	return Series{Labels: append([]string(nil), weekdayLabels...), Data: data}
}

// HourHistogram строит гистограмму по часам суток: всегда ровно 24 корзины.
func HourHistogram(messages []domain.Message) Series {
	labels := make([]string, 24)
	data := make([]int, 24)
	for i := range labels {
		labels[i] = fmt.Sprintf("%02d", i)
	}
	for _, msg := range messages {
		if msg.Timestamp == nil {
			continue
		}
		data[msg.Timestamp.Hour()]++
	}
	return Series{Labels: labels, Data: data}
}

// PerUserTimeline строит по одному ряду на отправителя, выровненному
// по общему отсортированному набору корзин. Отсутствующие комбинации
// отправитель/корзина заполняются нулем, а не пропуском. Отправители
// идут в порядке первого появления.
func PerUserTimeline(messages []domain.Message, bucket TimeBucket) MultiSeries {
	perUser := make(map[string]map[string]int)
	allBuckets := make(map[string]int)
	var userOrder []string

	for _, msg := range messages {
		if msg.Timestamp == nil {
			continue
		}
		key := bucketKey(msg, bucket)
		allBuckets[key] = 0

		if _, seen := perUser[msg.Sender]; !seen {
			perUser[msg.Sender] = make(map[string]int)
			userOrder = append(userOrder, msg.Sender)
		}
		perUser[msg.Sender][key]++
	}

	labels := sortedKeys(allBuckets)
	ms := MultiSeries{Labels: labels, Users: make([]UserSeries, 0, len(userOrder))}
	for _, name := range userOrder {
		data := make([]int, len(labels))
		for i, label := range labels {
			data[i] = perUser[name][label]
		}
		ms.Users = append(ms.Users, UserSeries{Name: name, Data: data})
	}
	return ms
}

func bucketKey(msg domain.Message, bucket TimeBucket) string {
	ts := msg.Timestamp
	switch bucket {
	case BucketHour:
		return ts.Format("2006-01-02 15")
	case BucketWeek:
		year, week := ts.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case BucketMonth:
		return ts.Format("2006-01")
	default:
		return ts.Format("2006-01-02")
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
