// ABOUTME: Embedded starter vocabulary for the core board
// ABOUTME: Decodes the bundled TOML word list at first use

package coreboard

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed vocabulary.toml
var vocabularyTOML string

// Word is one entry of the starter vocabulary.
type Word struct {
	Label  string `toml:"label"`
	Speech string `toml:"speech"`
	Symbol string `toml:"symbol"`
}

type vocabulary struct {
	Words []Word `toml:"words"`
}

// Vocabulary returns the bundled starter words in grid order.
func Vocabulary() ([]Word, error) {
	var v vocabulary
	if _, err := toml.Decode(vocabularyTOML, &v); err != nil {
		return nil, fmt.Errorf("decoding bundled vocabulary: %w", err)
	}
	if len(v.Words) == 0 {
		return nil, fmt.Errorf("bundled vocabulary is empty")
	}
	return v.Words, nil
}
