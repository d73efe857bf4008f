// Package logformat реализует текстовый формат лога сессии:
//
//	OBJ_START~<name><unique_id>[~<is_key_flag>]
//		TRK_START~<track_kind_name>
//			<timestamp>~<field1>~<field2>...
//		TRK_END~<track_kind_name>
//	OBJ_END~<name><unique_id>
//
// Табуляция косметическая и при разборе отбрасывается. Разбор не знает о
// типах семплов: каждому треку достается его сырой текст.
package logformat

import (
	"strconv"
	"strings"
)

const (
	ObjectStart = "OBJ_START"
	ObjectEnd   = "OBJ_END"
	TrackStart  = "TRK_START"
	TrackEnd    = "TRK_END"

	Delimiter = "~"
)

// ObjectHeader заголовок объекта в логе
type ObjectHeader struct {
	Name string
	ID   string // "_<N>", назначается сессией записи
	Key  bool
}

// FullName "<name><unique_id>" как в строках OBJ_START/OBJ_END
func (h ObjectHeader) FullName() string {
	return h.Name + h.ID
}

// Writer собирает текст одного объекта
type Writer struct {
	b strings.Builder
}

// BeginObject пишет строку OBJ_START. Флаг ключевого объекта пишется только если он установлен.
func (w *Writer) BeginObject(h ObjectHeader) {
	w.b.WriteString(ObjectStart + Delimiter + h.FullName())
	if h.Key {
		w.b.WriteString(Delimiter + strconv.FormatBool(true))
	}
	w.b.WriteByte('\n')
}

// Track пишет блок трека; body: строки семплов, каждая с завершающим \n
func (w *Writer) Track(kind string, body string) {
	w.b.WriteString("\t" + TrackStart + Delimiter + kind + "\n")
	for _, line := range strings.SplitAfter(body, "\n") {
		if line == "" {
			continue
		}
		w.b.WriteString("\t\t")
		w.b.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			w.b.WriteByte('\n')
		}
	}
	w.b.WriteString("\t" + TrackEnd + Delimiter + kind + "\n")
}

// EndObject пишет строку OBJ_END
func (w *Writer) EndObject(h ObjectHeader) {
	w.b.WriteString(ObjectEnd + Delimiter + h.FullName() + "\n")
}

// String возвращает накопленный текст
func (w *Writer) String() string {
	return w.b.String()
}

// SplitFullName делит "<name>_<N>" на имя и идентификатор "_<N>".
// Если суффикса-числа нет, вся строка считается именем.
func SplitFullName(full string) (name, id string) {
	i := strings.LastIndex(full, "_")
	if i < 0 || i == len(full)-1 {
		return full, ""
	}
	if _, err := strconv.ParseUint(full[i+1:], 10, 64); err != nil {
		return full, ""
	}
	return full[:i], full[i:]
}
