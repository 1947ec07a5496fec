package business

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads the salon data and FAQ files (JSON or YAML, picked by
// extension) and builds a Catalog. An empty faqPath yields a catalog
// without FAQ entries.
func LoadCatalog(salonPath, faqPath string) (*Catalog, error) {
	var salon Salon
	if err := decodeFile(salonPath, &salon); err != nil {
		return nil, err
	}
	var faqs []FAQ
	if faqPath != "" {
		if err := decodeFile(faqPath, &faqs); err != nil {
			return nil, err
		}
	}
	return NewCatalog(salon, faqs)
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("business: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("business: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("business: parse %s: %w", path, err)
		}
	}
	return nil
}
