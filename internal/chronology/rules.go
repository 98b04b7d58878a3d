package chronology

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
)

// DefaultRules is substituted when no formatting-rules file is available.
const DefaultRules = "Generate a medical chronology from the provided documents."

// LoadRules reads the formatting-rules text from path, falling back to
// DefaultRules when the file is missing, unreadable or empty.
func LoadRules(path string) string {
	if path == "" {
		return DefaultRules
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("chronology.LoadRules: %s not found, using basic rules", path)
		} else {
			log.Printf("chronology.LoadRules: reading %s: %v, using basic rules", path, err)
		}
		return DefaultRules
	}
	rules := strings.TrimSpace(string(data))
	if rules == "" {
		log.Printf("chronology.LoadRules: %s is empty, using basic rules", path)
		return DefaultRules
	}
	return rules
}
