package classify

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// rawClassification is one entry of the agent's final output.
type rawClassification struct {
	Index      *int   `json:"index"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Confidence int    `json:"confidence"`
}

type classificationPayload struct {
	Classifications []rawClassification `json:"classifications"`
}

const classificationsKey = `"classifications"`

// extractClassifications pulls the final classification object out of the
// agent's raw text. The agent may have echoed JSON earlier while
// reasoning about tool results, so the parser anchors on the last
// occurrence of the classifications key, walks backward to the object's
// opening brace, and forward to its matching close.
func extractClassifications(raw string) ([]rawClassification, error) {
	keyIdx := strings.LastIndex(raw, classificationsKey)
	if keyIdx < 0 {
		return nil, eris.New("classify: no classifications object in output")
	}

	start := openingBrace(raw, keyIdx)
	if start < 0 {
		return nil, eris.New("classify: unbalanced JSON in output")
	}

	end := closingBrace(raw, start)
	if end < 0 {
		return nil, eris.New("classify: unterminated JSON in output")
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, eris.Wrap(err, "classify: decode classifications")
	}
	if len(payload.Classifications) == 0 {
		return nil, eris.New("classify: empty classifications array")
	}
	return payload.Classifications, nil
}

// openingBrace scans backward from pos for the brace that opens the
// object containing it.
func openingBrace(s string, pos int) int {
	depth := 0
	for i := pos - 1; i >= 0; i-- {
		switch s[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// closingBrace scans forward from an opening brace to its match,
// skipping braces inside string literals.
func closingBrace(s string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
