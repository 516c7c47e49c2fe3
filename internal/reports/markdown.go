package reports

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"
)

var markdownTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"date":    func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	"inc":     func(i int) int { return i + 1 },
	"pct":     func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"conf":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"join":    strings.Join,
	"orDash":  orDash,
	"sortedF": sortedFloat,
	"sortedI": sortedInt,
}).Parse(`# Visitor Follow-up Summary: {{.Tenant}}

Period: {{date .Summary.PeriodStart}} to {{date .Summary.PeriodEnd}}

## Visitor summary

- Total visitors: {{.Summary.Visitors.TotalVisitors}}
- Individual engagements: {{.Summary.Visitors.IndividualEngagements}}
- Family engagements: {{.Summary.Visitors.FamilyEngagements}} ({{.Summary.Visitors.FamilyMembers}} family members)
- Average note confidence: {{conf .Summary.Visitors.AverageConfidence}}

## Interests
{{range sortedF .Summary.InterestBreakdown}}
- {{.Key}}: {{pct .Value}}{{else}}
No interests recorded.{{end}}

## Sentiment
{{range sortedI .Summary.SentimentBreakdown}}
- {{.Key}}: {{.Count}}{{else}}
No sentiment recorded.{{end}}

## Top recommendations
{{range $i, $r := .Summary.TopRecommendations}}
{{inc $i}}. {{$r.Title}} ({{$r.Count}}){{else}}
No recommendations recorded.{{end}}

## Individual summaries
{{range .Summary.Individuals}}
### {{orDash .Name}}

- Scenario: {{.ScenarioType}}
- Sentiment: {{.Sentiment}}
- Confidence: {{conf .Confidence}}
- Interests: {{orDash (join .Interests ", ")}}
- Next step: {{orDash .NextStep}}
{{else}}
No visitors in this period.
{{end}}`))

type kv struct {
	Key   string
	Value float64
	Count int
}

func sortedFloat(m map[string]float64) []kv {
	out := make([]kv, 0, len(m))
	for k, v := range m {
		out = append(out, kv{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func sortedInt(m map[string]int) []kv {
	out := make([]kv, 0, len(m))
	for k, c := range m {
		out = append(out, kv{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// RenderMarkdown renders s as a markdown document.
func RenderMarkdown(tenant string, s Summary) (string, error) {
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, struct {
		Tenant  string
		Summary Summary
	}{tenant, s}); err != nil {
		return "", fmt.Errorf("render report markdown: %w", err)
	}
	return buf.String(), nil
}
