package interaction

import "strings"

// knownHerbs lists the supplement names the engine recognizes as herbal.
// Names are stored normalized (lower case, trimmed). The set mirrors
// the supplements the reference registry carries monographs for.
var knownHerbs = map[string]bool{
	"st john's wort": true,
	"st. john's wort": true,
	"ginkgo":          true,
	"ginkgo biloba":   true,
	"ginseng":         true,
	"garlic":          true,
	"echinacea":       true,
	"valerian":        true,
	"valerian root":   true,
	"kava":            true,
	"turmeric":        true,
	"ginger":          true,
	"milk thistle":    true,
	"saw palmetto":    true,
	"black cohosh":    true,
	"goldenseal":      true,
	"licorice root":   true,
	"evening primrose": true,
	"feverfew":         true,
	"hawthorn":         true,
}

// IsHerbalSupplement reports whether name is a recognized herbal
// supplement. Matching is case-insensitive and ignores surrounding
// whitespace.
func IsHerbalSupplement(name string) bool {
	return knownHerbs[strings.ToLower(strings.TrimSpace(name))]
}
