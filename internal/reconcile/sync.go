package reconcile

import (
	"context"

	"github.com/dkstudio/shopsync/internal/catalog"
	"github.com/dkstudio/shopsync/internal/etsy"
)

// SyncCatalog pulls every listing page for the shop and persists each
// entity as a fresh snapshot under the products namespace, then prunes
// reverse-index entries whose listing no longer exists. An interrupted sync
// leaves already-persisted pages intact; there is no rollback.
func (e *Engine) SyncCatalog(ctx context.Context) (int, error) {
	pager := e.client.ShopListings(e.shopID)

	synced := 0
	for {
		page, ok, err := pager.Next(ctx)
		if err != nil {
			return synced, err
		}
		if !ok {
			break
		}
		for _, entity := range page.Results {
			id := etsy.EntityID(entity["listing_id"])
			if id == "" {
				e.logger.Warn().Msg("listing entity without listing_id; ignored")
				continue
			}
			if err := e.catalog.Persist(catalog.NamespaceProducts, id, entity); err != nil {
				return synced, err
			}
			synced++
		}
		e.logger.Debug().Int("page_results", len(page.Results)).Int("total", page.Count).Msg("persisted listing page")
	}

	if err := e.pruneIndex(); err != nil {
		return synced, err
	}

	e.logger.Info().Int("listings", synced).Msg("catalog sync complete")
	return synced, nil
}

// pruneIndex drops reverse-index entries that point at listings no longer
// present in the catalog. This keeps the index invariant: every claimed id
// corresponds to a live catalog entity, and associations naming a pruned
// id read as unmapped on the next resolve.
func (e *Engine) pruneIndex() error {
	live, err := e.catalog.SelectKeys(catalog.NamespaceProducts)
	if err != nil {
		return err
	}
	liveSet := make(map[string]struct{}, len(live))
	for _, id := range live {
		liveSet[id] = struct{}{}
	}

	claimed, err := e.catalog.SelectKeys(catalog.NamespaceListingIndex)
	if err != nil {
		return err
	}
	for _, id := range claimed {
		if _, ok := liveSet[id]; ok {
			continue
		}
		if err := e.catalog.Delete(catalog.NamespaceListingIndex, id); err != nil {
			return err
		}
		e.logger.Debug().Str("listing_id", id).Msg("pruned stale reverse-index entry")
	}
	return nil
}
