package autocomplete

import (
	"fmt"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/resolver"
)

// FromConfig returns the configured place searcher. The local backend
// searches through suggester.
func FromConfig(cfg config.AutocompleteConfig, suggester Suggester) (resolver.PlaceSearcher, error) {
	switch cfg.Provider {
	case config.AutocompleteLocal, "":
		return NewLocal(suggester, cfg.Limit), nil
	case config.AutocompleteRemote:
		return NewClient(cfg.BaseURL, cfg.Limit, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown autocomplete provider %q", cfg.Provider)
	}
}
