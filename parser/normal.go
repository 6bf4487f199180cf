package parser

import "os"

// extractNormal treats every line of a plain-text file as its own unit, so
// a chunk's page records the line it started on.
func extractNormal(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return splitUnits(string(content)), nil
}

func splitUnits(content string) []string {
	if content == "" {
		return nil
	}
	var units []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			units = append(units, content[start:i])
			start = i + 1
		}
	}
	if start < len(content) {
		units = append(units, content[start:])
	}
	return units
}
