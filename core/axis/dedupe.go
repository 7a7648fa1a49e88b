package axis

import (
	"log/slog"

	"github.com/adalundhe/courseaxis/core/coursetree"
)

// ResolveDuplicates disambiguates identifier collisions in a completed axis.
// Vertical identifiers are regenerable, so every vertical in a collision
// group is renamed with a "_vertical" suffix; collisions among other
// categories are tolerated and logged, since their identifiers are referenced
// externally and must not change.
func ResolveDuplicates(elements []Element, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	groups := make(map[string][]int, len(elements))
	for i := range elements {
		name := elements[i].URLName
		groups[name] = append(groups[name], i)
	}
	for name, members := range groups {
		if len(members) < 2 {
			continue
		}
		renamed := 0
		for _, i := range members {
			if elements[i].Category == coursetree.CategoryVertical {
				elements[i].URLName = name + "_vertical"
				renamed++
			}
		}
		if renamed < len(members)-1 || renamed == 0 {
			logger.Warn("duplicate url_name not fully resolved",
				"url_name", name, "members", len(members), "renamed", renamed)
		}
	}
}
