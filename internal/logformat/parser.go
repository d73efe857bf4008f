package logformat

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ObjectRecord промежуточное представление объекта: сырой текст каждого трека
type ObjectRecord struct {
	ObjectHeader
	Tracks map[string]string
	Order  []string // имена треков в порядке появления
}

// ParseError ошибка разбора с номером строки (1-based)
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("log parse error at line %d: %s", e.Line, e.Msg)
	}
	return "log parse error: " + e.Msg
}

type parseState int

const (
	awaitingObject parseState = iota
	inObject
	inTrack
)

type parser struct {
	state    parseState
	line     int
	current  *ObjectRecord
	fullName string
	trackKey string
	acc      strings.Builder
	out      []ObjectRecord
}

// Parse разбирает весь лог за один проход. Любое нарушение структуры
// (незакрытый объект или трек, несовпадающие имена, вложенные начала,
// данные вне трека, повтор трека в объекте, пустой трек) дает *ParseError.
func Parse(text string) ([]ObjectRecord, error) {
	p := &parser{}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for sc.Scan() {
		p.line++
		if err := p.feed(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Line: p.line, Msg: err.Error()}
	}

	switch p.state {
	case inTrack:
		return nil, p.errf("трек %s объекта %s не закрыт до конца файла", p.trackKey, p.fullName)
	case inObject:
		return nil, p.errf("объект %s не закрыт до конца файла", p.fullName)
	}
	return p.out, nil
}

func (p *parser) errf(format string, args ...interface{}) *ParseError {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) feed(raw string) error {
	line := strings.TrimRight(strings.TrimLeft(raw, " \t"), "\r")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	fields := strings.Split(line, Delimiter)
	directive := fields[0]

	switch p.state {
	case awaitingObject:
		if directive != ObjectStart {
			return p.errf("ожидался %s, получено %q", ObjectStart, truncate(line))
		}
		return p.openObject(fields)

	case inObject:
		switch directive {
		case TrackStart:
			return p.openTrack(fields)
		case ObjectEnd:
			return p.closeObject(fields)
		case ObjectStart:
			return p.errf("вложенный %s внутри объекта %s", ObjectStart, p.fullName)
		default:
			return p.errf("данные вне трека в объекте %s: %q", p.fullName, truncate(line))
		}

	case inTrack:
		switch directive {
		case TrackEnd:
			return p.closeTrack(fields)
		case TrackStart, ObjectStart, ObjectEnd:
			return p.errf("%s внутри незакрытого трека %s", directive, p.trackKey)
		default:
			p.acc.WriteString(line)
			p.acc.WriteByte('\n')
			return nil
		}
	}
	return nil
}

func (p *parser) openObject(fields []string) error {
	if len(fields) < 2 || fields[1] == "" {
		return p.errf("%s без имени объекта", ObjectStart)
	}
	if len(fields) > 3 {
		return p.errf("лишние поля в %s", ObjectStart)
	}

	name, id := SplitFullName(fields[1])
	rec := &ObjectRecord{
		ObjectHeader: ObjectHeader{Name: name, ID: id},
		Tracks:       make(map[string]string),
	}
	if len(fields) == 3 {
		key, err := strconv.ParseBool(fields[2])
		if err != nil {
			return p.errf("флаг ключевого объекта %q: %v", fields[2], err)
		}
		rec.Key = key
	}

	p.current = rec
	p.fullName = fields[1]
	p.state = inObject
	return nil
}

func (p *parser) openTrack(fields []string) error {
	if len(fields) != 2 || fields[1] == "" {
		return p.errf("%s без имени трека", TrackStart)
	}
	if _, dup := p.current.Tracks[fields[1]]; dup {
		return p.errf("трек %s повторяется в объекте %s", fields[1], p.fullName)
	}
	p.trackKey = fields[1]
	p.acc.Reset()
	p.state = inTrack
	return nil
}

func (p *parser) closeTrack(fields []string) error {
	if len(fields) != 2 || fields[1] != p.trackKey {
		return p.errf("%s не совпадает с открытым треком %s", strings.Join(fields, Delimiter), p.trackKey)
	}
	if p.acc.Len() == 0 {
		return p.errf("трек %s объекта %s пуст", p.trackKey, p.fullName)
	}
	p.current.Tracks[p.trackKey] = p.acc.String()
	p.current.Order = append(p.current.Order, p.trackKey)
	p.state = inObject
	return nil
}

func (p *parser) closeObject(fields []string) error {
	if len(fields) != 2 || fields[1] != p.fullName {
		return p.errf("%s не совпадает с открытым объектом %s", strings.Join(fields, Delimiter), p.fullName)
	}
	p.out = append(p.out, *p.current)
	p.current = nil
	p.fullName = ""
	p.state = awaitingObject
	return nil
}

func truncate(s string) string {
	if len(s) > 48 {
		return s[:48] + "..."
	}
	return s
}
