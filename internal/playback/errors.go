package playback

import "fmt"

// GenerateError трек объекта не удалось построить из текста лога
type GenerateError struct {
	Object string // "<name><unique_id>"
	Track  string
	Err    error
}

func (e *GenerateError) Error() string {
	if e.Track == "" {
		return fmt.Sprintf("generate %s: %v", e.Object, e.Err)
	}
	return fmt.Sprintf("generate %s/%s: %v", e.Object, e.Track, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }
