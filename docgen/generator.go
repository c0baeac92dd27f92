package docgen

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"dealdesk/pipeline"
)

// defaultTemplate is used when no template file is configured. The layout
// mirrors the offer-sheet wording the acquisitions team sends out.
const defaultTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Letter of Intent</title></head>
<body>
<h1>Letter of Intent to Purchase</h1>
<p>Property: {{.PropertyAddress}}</p>
<p>{{.BusinessName}} hereby submits this non-binding letter of intent to
purchase the property located at {{.PropertyAddress}} for a purchase price
of {{.OfferPrice}}.</p>
<p>This offer is contingent on inspection and clear title.</p>
<p>Sincerely,<br>{{.UserName}}<br>{{.BusinessName}}<br>{{.UserEmail}}</p>
</body>
</html>
`

type loiData struct {
	PropertyAddress string
	OfferPrice      string
	BusinessName    string
	UserName        string
	UserEmail       string
}

// Generator writes one LOI document per property into OutputDir. It
// satisfies pipeline.DocumentGenerator. Filenames are derived from the
// property address; when two properties collapse to the same name (duplicate
// rows, blank addresses) the later one gets a numeric suffix so no file is
// overwritten.
type Generator struct {
	TemplatePath string
	OutputDir    string
	RenderPDF    bool

	mu   sync.Mutex
	seen map[string]int
}

// uniqueBase reserves a filename stem, suffixing repeats within this
// generator's lifetime.
func (g *Generator) uniqueBase(base string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = make(map[string]int)
	}
	g.seen[base]++
	if n := g.seen[base]; n > 1 {
		return fmt.Sprintf("%s_%d", base, n)
	}
	return base
}

// Generate fills the LOI template from the assembled record and returns the
// generated filename. The name is derived from the property address; repeats
// of the same address within a run are suffixed rather than overwritten.
func (g *Generator) Generate(rec pipeline.Record, id pipeline.Identity) (string, error) {
	tmpl, err := g.loadTemplate()
	if err != nil {
		return "", err
	}

	data := loiData{
		PropertyAddress: rec.String(pipeline.FieldAddress),
		BusinessName:    id.BusinessName,
		UserName:        id.UserName,
		UserEmail:       id.UserEmail,
	}
	if offer, ok := rec.Number(pipeline.FieldOfferPrice); ok {
		data.OfferPrice = Money(offer)
	}

	if err := os.MkdirAll(g.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	base := g.uniqueBase("LOI_" + SafeFileName(data.PropertyAddress))
	htmlName := base + ".html"
	htmlPath := filepath.Join(g.OutputDir, htmlName)

	f, err := os.Create(htmlPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", htmlName, err)
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to render %s: %w", htmlName, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if g.RenderPDF {
		pdfName := base + ".pdf"
		if err := renderPDF(htmlPath, filepath.Join(g.OutputDir, pdfName)); err != nil {
			return "", fmt.Errorf("failed to render PDF for %s: %w", htmlName, err)
		}
		return pdfName, nil
	}
	return htmlName, nil
}

func (g *Generator) loadTemplate() (*template.Template, error) {
	if g.TemplatePath == "" {
		return template.Must(template.New("loi").Parse(defaultTemplate)), nil
	}
	tmpl, err := template.ParseFiles(g.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LOI template %s: %w", g.TemplatePath, err)
	}
	return tmpl, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFileName substitutes filesystem-unsafe characters in an address so
// distinct addresses stay distinct on disk.
func SafeFileName(address string) string {
	s := unsafeChars.ReplaceAllString(strings.TrimSpace(address), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "property"
	}
	return s
}

// Money formats a dollar amount with comma thousands separators.
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := "$" + b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}
