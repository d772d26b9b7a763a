package tokenizer

import (
	"errors"

	"github.com/tyemirov/cli2text/internal/classify"
)

// CountResult captures the outcome of counting a document.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountText estimates tokens for text using counter.
// Text carrying binary content, possible with include-all, is reported as not counted.
func CountText(counter Counter, text string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errors.New("nil tokenizer counter")
	}
	if classify.IsBinaryContent([]byte(text), false) {
		return CountResult{Counted: false}, nil
	}
	tokens, countError := counter.CountString(text)
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
