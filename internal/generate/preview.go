package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/createdbygabi/Blocks-sub001/internal/assets"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

var ErrNoAssets = errors.New("no asset bucket configured")

var previewTemplate = template.Must(template.New("preview").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
body { margin: 0; font-family: {{with .Theme}}{{.Font}},{{end}} sans-serif; background: {{with .Theme}}{{.Background}}{{else}}#ffffff{{end}}; }
.accent { color: {{with .Theme}}{{.Primary}}{{else}}#111111{{end}}; }
</style>
</head>
<body>
<header>
{{if .LogoURL}}<img src="{{.LogoURL}}" alt="{{.Name}} logo" width="64">{{end}}
<h1 class="accent">{{with .Copy}}{{.Headline}}{{else}}{{$.Name}}{{end}}</h1>
{{with .Copy}}<p>{{.Subheadline}}</p>{{end}}
</header>
{{with .Copy}}
<section>
{{range .Features}}<article><h3>{{.Title}}</h3><p>{{.Body}}</p></article>
{{end}}
</section>
<section>{{.About}}</section>
{{end}}
<section>
{{range .Plans}}<div class="plan"><h3>{{.Name}}</h3><p>{{printf "%.2f" .Price}} {{.Currency}}/{{.Interval}}</p>
<ul>{{range .Features}}<li>{{.}}</li>{{end}}</ul></div>
{{end}}
</section>
{{if .SiteURL}}<a class="accent" href="{{.SiteURL}}">{{with .Copy}}{{.CTA}}{{else}}Visit{{end}}</a>{{end}}
</body>
</html>
`))

type previewCopy struct {
	state.LandingCopy
	About template.HTML
}

type previewData struct {
	state.Business
	Copy *previewCopy
}

// Preview renders a static landing page from the business record and
// publishes it to the asset bucket.
type Preview struct {
	Assets *assets.Store
}

func (h *Preview) Handle(ctx context.Context, in dispatch.Input) (state.Payload, error) {
	if h.Assets == nil {
		return nil, ErrNoAssets
	}
	page, err := RenderPreview(in.Business)
	if err != nil {
		return nil, err
	}
	url, err := h.Assets.Put(ctx, assets.Key(in.UserID, in.RunID, "index.html"), page, "text/html; charset=utf-8")
	if err != nil {
		return nil, fmt.Errorf("storing preview: %w", err)
	}
	return state.PreviewResult{URL: url}, nil
}

// RenderPreview renders the landing page for b. The about HTML is
// re-sanitized before it is trusted by the template.
func RenderPreview(b state.Business) ([]byte, error) {
	data := previewData{Business: b}
	if b.Copy != nil {
		c := SanitizeCopy(*b.Copy)
		data.Copy = &previewCopy{LandingCopy: c, About: template.HTML(c.AboutHTML)}
	}
	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
