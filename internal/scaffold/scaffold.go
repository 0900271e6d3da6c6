// Package scaffold writes the starter files for a new blocks project.
package scaffold

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
)

const (
	SettingsFile = "blocks.yaml"
	PipelineFile = "pipeline.yaml"
)

var settingsTemplate = `# Settings for blocks. Environment variables override these values;
# secrets (OPENAI_API_KEY, REPLICATE_API_TOKEN, STRIPE_SECRET_KEY,
# JWT_SECRET) are best kept in the environment or a .env file.
env: development
log-level: info
pipeline: pipeline.yaml

store:
  driver: file
  dir: .blocks/records

api:
  host: 0.0.0.0
  port: 8080
  token-ttl: 24h
  allow-origins:
    - http://localhost:3000

llm:
  model: gpt-4o-mini

replicate:
  model: black-forest-labs/flux-schnell
  poll-interval: 2s

domains:
  tlds: [com, io, co]

deploy:
  command: vercel deploy --prod --yes --name $SLUG

assets:
  bucket-url: file:///tmp/blocks-assets?create_dir=true
`

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Init writes blocks.yaml and pipeline.yaml into targetDir. It refuses to
// overwrite either file.
func Init(targetDir string, w io.Writer) error {
	files := []struct{ name, content string }{
		{SettingsFile, settingsTemplate},
		{PipelineFile, config.DefaultPipeline},
	}
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(targetDir, f.name)); err == nil {
			return fmt.Errorf("%s already exists in %s", f.name, targetDir)
		}
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return err
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(targetDir, f.name), []byte(f.content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", okStyle.Render("✓ Initialized blocks project"))
	fmt.Fprintf(w, "  Created:\n")
	fmt.Fprintf(w, "    %s    settings\n", fileStyle.Render(SettingsFile))
	fmt.Fprintf(w, "    %s  the onboarding steps\n\n", fileStyle.Render(PipelineFile))
	fmt.Fprintf(w, "  Next steps:\n")
	fmt.Fprintf(w, "    1. Export OPENAI_API_KEY and the other collaborator keys\n")
	fmt.Fprintf(w, "    2. Run %s to preview\n\n", fileStyle.Render(`blocks run <user> --idea "..." --dry-run`))
	return nil
}
