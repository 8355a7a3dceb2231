package reconcile

import (
	"github.com/dkstudio/shopsync/internal/catalog"
)

// Resolve runs the per-folder state machine to a terminal state. A folder
// ends Mapped when it has a persisted association naming a listing that
// exists in the current catalog snapshot, and Skipped otherwise. Skipping
// never mutates persisted state.
func (e *Engine) Resolve(folder Folder) (Association, Outcome, error) {
	var assoc Association
	found, err := catalog.ReadMetadata(folder.Path, &assoc)
	if err != nil {
		return Association{}, Skipped, err
	}
	if assoc.ProductName == "" {
		assoc.ProductName = folder.Name
	}

	// An existing association short-circuits resolution, but only while
	// its listing still exists in the catalog snapshot. An orphaned
	// mapping is unmapped, not invalid: fall through and re-resolve.
	if found && assoc.EtsyListingID != "" {
		_, exists, err := e.catalog.Select(catalog.NamespaceProducts, assoc.EtsyListingID)
		if err != nil {
			return Association{}, Skipped, err
		}
		if exists {
			if err := e.claim(assoc.EtsyListingID, folder.Path); err != nil {
				return Association{}, Skipped, err
			}
			return assoc, Mapped, nil
		}
		e.logger.Warn().
			Str("product", folder.Name).
			Str("listing_id", assoc.EtsyListingID).
			Msg("association names a listing missing from the catalog; re-resolving")
	}

	// Deterministic match against the SKU/title table.
	lookup, err := e.buildLookup()
	if err != nil {
		return Association{}, Skipped, err
	}
	if listingID, ok := lookup[folder.Name]; ok {
		assoc.EtsyListingID = listingID
		if err := e.persist(folder, assoc); err != nil {
			return Association{}, Skipped, err
		}
		e.logger.Info().
			Str("product", folder.Name).
			Str("listing_id", listingID).
			Msg("auto-associated by SKU")
		return assoc, Mapped, nil
	}

	// Interactive fallback over listings no local folder has claimed.
	candidates, err := e.unclaimedCandidates(folder.Name)
	if err != nil {
		return Association{}, Skipped, err
	}
	if len(candidates) == 0 {
		e.logger.Info().Str("product", folder.Name).Msg("no unclaimed listings to offer; skipped")
		return assoc, Skipped, nil
	}

	choice, ok, err := e.chooser.Choose(folder.Name, candidates)
	if err != nil {
		return Association{}, Skipped, err
	}
	if !ok {
		return assoc, Skipped, nil
	}

	assoc.EtsyListingID = choice.ListingID
	if err := e.persist(folder, assoc); err != nil {
		return Association{}, Skipped, err
	}
	e.logger.Info().
		Str("product", folder.Name).
		Str("listing_id", choice.ListingID).
		Str("title", choice.Title).
		Msg("associated by operator choice")
	return assoc, Mapped, nil
}

// persist writes the association sidecar and its reverse-index entry.
func (e *Engine) persist(folder Folder, assoc Association) error {
	if err := catalog.WriteMetadata(folder.Path, assoc); err != nil {
		return err
	}
	return e.claim(assoc.EtsyListingID, folder.Path)
}
