package trigger

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DateLayout is the short date format used in rendered alerts.
const DateLayout = "02/01/2006"

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Renderer substitutes {name} placeholders with locale-formatted values.
type Renderer struct {
	printer *message.Printer
}

func NewRenderer(locale string) *Renderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Renderer{printer: message.NewPrinter(tag)}
}

var defaultRenderer = NewRenderer("en-IN")

// Render formats template with the default en-IN renderer.
func Render(template string, data Data) string {
	return defaultRenderer.Render(template, data)
}

// Render replaces every {name} token found in data. Tokens without a value
// are left as they are.
func (r *Renderer) Render(template string, data Data) string {
	return placeholder.ReplaceAllStringFunc(template, func(token string) string {
		key := token[1 : len(token)-1]
		v, ok := data[key]
		if !ok || v == nil {
			return token
		}
		return r.format(v)
	})
}

func (r *Renderer) format(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int, int32, int64, uint, uint32, uint64:
		return r.printer.Sprintf("%d", v)
	case decimal.Decimal:
		if v.IsInteger() {
			return r.printer.Sprintf("%d", v.IntPart())
		}
		return r.printer.Sprintf("%v", number.Decimal(v.InexactFloat64(),
			number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	case time.Time:
		return v.Format(DateLayout)
	default:
		return fmt.Sprint(v)
	}
}
