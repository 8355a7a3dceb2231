package reconcile

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/dkstudio/shopsync/internal/catalog"
	"github.com/dkstudio/shopsync/internal/etsy"
)

// mugPressTag marks the product-variant category whose SKUs get synthesized
// name variants, because those folders are conventionally named with the
// variant suffixes the listing SKUs omit.
const mugPressTag = "Cricut Mug Press SVG"

// buildLookup builds the name-to-listing-id table from all cached catalog
// entities: every declared SKU, the two synthesized variants for mug-press
// tagged entities, and the entity's literal title.
func (e *Engine) buildLookup() (map[string]string, error) {
	ids, err := e.catalog.SelectKeys(catalog.NamespaceProducts)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]string)
	for _, id := range ids {
		entity, found, err := e.catalog.Select(catalog.NamespaceProducts, id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}

		mugPress := false
		for _, tag := range stringSlice(entity["tags"]) {
			if strings.EqualFold(tag, mugPressTag) {
				mugPress = true
				break
			}
		}

		for _, sku := range stringSlice(entity["skus"]) {
			lookup[sku] = id
			if mugPress {
				lookup[sku+" Mug"] = id
				lookup[sku+" Mug Press"] = id
			}
		}

		if title, ok := entity["title"].(string); ok && title != "" {
			lookup[title] = id
		}
	}
	return lookup, nil
}

// unclaimedCandidates ranks the catalog entities not yet claimed by any
// local association against the derived product name, best match first,
// capped at maxCandidates.
func (e *Engine) unclaimedCandidates(productName string) ([]Candidate, error) {
	unclaimed, err := e.unclaimedListings()
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(unclaimed))
	for _, id := range unclaimed {
		entity, found, err := e.catalog.Select(catalog.NamespaceProducts, id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		title, _ := entity["title"].(string)
		candidates = append(candidates, Candidate{
			ListingID: id,
			Title:     title,
			Score:     smetrics.JaroWinkler(strings.ToLower(productName), strings.ToLower(title), 0.7, 4),
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates, nil
}

// unclaimedListings returns catalog ids with no reverse-index entry.
func (e *Engine) unclaimedListings() ([]string, error) {
	all, err := e.catalog.SelectKeys(catalog.NamespaceProducts)
	if err != nil {
		return nil, err
	}
	claimed, err := e.catalog.SelectKeys(catalog.NamespaceListingIndex)
	if err != nil {
		return nil, err
	}

	claimedSet := make(map[string]struct{}, len(claimed))
	for _, id := range claimed {
		claimedSet[id] = struct{}{}
	}

	unclaimed := make([]string, 0, len(all))
	for _, id := range all {
		if _, ok := claimedSet[id]; !ok {
			unclaimed = append(unclaimed, id)
		}
	}
	return unclaimed, nil
}

// claim records a reverse-index entry for a resolved association.
func (e *Engine) claim(listingID, folderPath string) error {
	return e.catalog.Persist(catalog.NamespaceListingIndex, listingID, etsy.Result{
		"product_path": folderPath,
	})
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
