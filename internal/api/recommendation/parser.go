package recommendation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

// ParseKind tags the shape of the model's answer.
type ParseKind int

const (
	KindCandidates ParseKind = iota
	KindNoResults
	KindUnparseable
)

func (k ParseKind) String() string {
	switch k {
	case KindCandidates:
		return "candidates"
	case KindNoResults:
		return "no_results"
	case KindUnparseable:
		return "unparseable"
	default:
		return "unknown"
	}
}

// ParseOutcome is the decoded model answer. Elements are kept raw so that the sentinel
// list can be passed through verbatim and candidates validated one by one.
type ParseOutcome struct {
	Kind        ParseKind
	Elements    []json.RawMessage
	CleanedText string
	Err         error
}

// CleanAIText strips a surrounding markdown code fence from the model's answer.
func CleanAIText(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ParseCandidates decodes the model's answer as a JSON array and detects the NO_RESULTS sentinel.
func ParseCandidates(raw string) ParseOutcome {
	cleaned := CleanAIText(raw)
	out := ParseOutcome{CleanedText: cleaned}

	if !strings.HasPrefix(cleaned, "[") {
		out.Kind = KindUnparseable
		out.Err = &types.ParseError{CleanedText: cleaned, Err: errors.New("expected a JSON array")}
		return out
	}
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		out.Kind = KindUnparseable
		out.Err = &types.ParseError{CleanedText: cleaned, Err: err}
		return out
	}

	out.Elements = elements
	if len(elements) > 0 && isNoResultsSentinel(elements[0]) {
		out.Kind = KindNoResults
		return out
	}
	out.Kind = KindCandidates
	return out
}

func isNoResultsSentinel(element json.RawMessage) bool {
	var probe struct {
		Status string `json:"status"`
	}
	if !bytes.HasPrefix(bytes.TrimSpace(element), []byte("{")) {
		return false
	}
	if err := json.Unmarshal(element, &probe); err != nil {
		return false
	}
	return probe.Status == types.NoResultsStatus
}

// ValidateCandidate checks one array element for the fields required to use it.
// name and address must be non-empty strings; other fields are read leniently.
func ValidateCandidate(raw json.RawMessage) (types.AICandidate, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return types.AICandidate{}, fmt.Errorf("%w: element is not an object", types.ErrCandidateInvalid)
	}

	name, ok := stringField(fields, "name")
	if !ok || name == "" {
		return types.AICandidate{}, fmt.Errorf("%w: missing name", types.ErrCandidateInvalid)
	}
	address, ok := stringField(fields, "address")
	if !ok || address == "" {
		return types.AICandidate{}, fmt.Errorf("%w: missing address for %q", types.ErrCandidateInvalid, name)
	}

	candidate := types.AICandidate{
		Name:     name,
		Address:  address,
		AIRating: numberField(fields, "ai_rating"),
	}
	candidate.PlaceID, _ = stringField(fields, "place_id")
	candidate.AIImageURL, _ = stringField(fields, "ai_image_url")
	candidate.Reason, _ = stringField(fields, "reason")
	candidate.Cost, _ = stringField(fields, "cost")
	return candidate, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func numberField(fields map[string]json.RawMessage, key string) *float64 {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	if s, ok := stringField(fields, key); ok && s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	return nil
}
