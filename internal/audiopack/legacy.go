package audiopack

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/tphakala/modaudio/internal/logger"
)

// ParseLegacyRoutes converts the plain-text routes format into a pack config.
//
// Each non-blank, non-comment line is either "original = replacement" or
// "original = replacement / weight". Every line becomes one route whose
// replacement weight is the line weight. Malformed lines are logged and skipped.
func ParseLegacyRoutes(r io.Reader, defaultWeight float64, log logger.Logger) (*PackConfig, error) {
	cfg := &PackConfig{Settings: DefaultPackSettings()}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		original, value, found := strings.Cut(line, "=")
		if !found || strings.Contains(value, "=") {
			log.Warn("Malformed route, expected original = replacement",
				logger.Int("line", lineNo))
			continue
		}

		fields := strings.Split(value, "/")
		if len(fields) > 2 {
			log.Warn("Too many values for route, expected at most replacement / weight",
				logger.Int("line", lineNo))
			continue
		}

		original = strings.TrimSpace(original)
		replacement := strings.TrimSpace(fields[0])
		if original == "" || replacement == "" {
			log.Warn("Route has an empty clip name or replacement",
				logger.Int("line", lineNo))
			continue
		}

		weight := defaultWeight
		if len(fields) == 2 {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
			if err != nil {
				log.Warn("Could not parse route weight, using default",
					logger.Int("line", lineNo),
					logger.String("weight", strings.TrimSpace(fields[1])),
					logger.Float64("default_weight", defaultWeight))
			} else {
				weight = parsed
			}
		}

		route := NewRoute(original)
		route.ReplacementWeight = weight
		route.ReplacementClips = []ClipSelection{NewClipSelection(replacement, 1)}
		cfg.Routes = append(cfg.Routes, route)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
