package recommendation

import (
	"crypto/md5"
	_ "embed"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

//go:embed prompt.tmpl
var promptTemplateText string

const (
	defaultRecommendationCount = 3
	defaultFallbackCity        = "Taipei City"
	defaultCurrencyHint        = "NT$"
)

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"coord": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 4, 64)
	},
	"temperature": func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	},
	"join": func(values []string) string {
		return strings.Join(values, ", ")
	},
}).Parse(promptTemplateText))

// PromptInput is everything the prompt is rendered from.
type PromptInput struct {
	types.RequestContext
	Area            string
	Position        *types.GeoPosition
	Count           int
	FallbackCity    string
	CurrencyHint    string
	NoResultsStatus string
}

// PromptOptions carries the deployment-level knobs of the prompt.
type PromptOptions struct {
	RecommendationCount int
	FallbackCity        string
	CurrencyHint        string
}

// NewPromptInput pairs a request context with its resolved area. An empty area means
// reverse geocoding was unavailable.
func NewPromptInput(rc types.RequestContext, area string, opts PromptOptions) PromptInput {
	in := PromptInput{
		RequestContext:  rc,
		Area:            strings.TrimSpace(area),
		Position:        rc.EffectiveGeoPosition(),
		Count:           opts.RecommendationCount,
		FallbackCity:    opts.FallbackCity,
		CurrencyHint:    opts.CurrencyHint,
		NoResultsStatus: types.NoResultsStatus,
	}
	if in.Count <= 0 {
		in.Count = defaultRecommendationCount
	}
	if in.FallbackCity == "" {
		in.FallbackCity = defaultFallbackCity
	}
	if in.CurrencyHint == "" {
		in.CurrencyHint = defaultCurrencyHint
	}
	return in
}

// ComposePrompt renders the instruction sent to the model. It is deterministic for a given input.
func ComposePrompt(in PromptInput) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, in); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}

// PromptHash is the correlation token attached to every response and log line of a request.
func PromptHash(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
