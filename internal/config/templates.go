package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
)

// CannedTemplates holds the operator's canned templates by canned kind and
// hazard.
type CannedTemplates map[domain.CannedKind]map[domain.HazardKind]domain.Template

// LoadTemplates reads operator templates named warning.txt, watch.txt and
// advisory.txt from dir. Missing files fall back to the built-in template;
// an empty dir loads nothing. Each file must name the hazard its file name
// says.
func LoadTemplates(dir string) (map[domain.HazardKind]domain.Template, error) {
	out := make(map[domain.HazardKind]domain.Template, len(domain.AllHazards))
	if dir == "" {
		return out, nil
	}
	for _, kind := range domain.AllHazards {
		tmpl, ok, err := readTemplate(filepath.Join(dir, string(kind)+".txt"), kind)
		if err != nil {
			return nil, err
		}
		if ok {
			out[kind] = tmpl
		}
	}
	return out, nil
}

// LoadCannedTemplates reads cancellation and imminent templates named
// <canned>_<hazard>.txt, e.g. cancel_warning.txt or imminent_watch.txt,
// from dir. Missing files fall back to the built-in canned template.
func LoadCannedTemplates(dir string) (CannedTemplates, error) {
	out := make(CannedTemplates, len(domain.AllCanned))
	if dir == "" {
		return out, nil
	}
	for _, c := range domain.AllCanned {
		for _, kind := range domain.AllHazards {
			tmpl, ok, err := readTemplate(filepath.Join(dir, string(c)+"_"+string(kind)+".txt"), kind)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if out[c] == nil {
				out[c] = make(map[domain.HazardKind]domain.Template, len(domain.AllHazards))
			}
			out[c][kind] = tmpl
		}
	}
	return out, nil
}

// readTemplate parses the template at path and checks it names kind. A
// missing file reports ok false.
func readTemplate(path string, kind domain.HazardKind) (domain.Template, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Template{}, false, nil
	}
	if err != nil {
		return domain.Template{}, false, fmt.Errorf("read template: %w", err)
	}
	tmpl, err := domain.ParseTemplate(string(data))
	if err != nil {
		return domain.Template{}, false, fmt.Errorf("parse template %s: %w", path, err)
	}
	if tmpl.Kind != kind {
		return domain.Template{}, false, fmt.Errorf("template %s: %w", path, domain.ErrTemplateKindMismatch)
	}
	return tmpl, true, nil
}
