package reconcile

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/dkstudio/shopsync/internal/catalog"
	"github.com/dkstudio/shopsync/pkg/errors"
)

// UploadProduct uploads the folder's packaged artifact to its associated
// listing, after the staleness checks. Declined confirmations surface as
// ErrDeclined, which callers treat as a normal skip; nothing is persisted
// on a decline. After a confirmed successful upload the watermark is set to
// the artifact's modification time at upload time, not wall-clock time, so
// later staleness comparisons stay correct even when the upload is slow.
func (e *Engine) UploadProduct(ctx context.Context, folder Folder, assoc Association) error {
	if assoc.EtsyListingID == "" {
		return errors.ErrInvalidInput
	}

	st, err := CheckStaleness(folder, assoc)
	if err != nil {
		return err
	}

	if st.ArtifactStale {
		ok, err := e.confirmer.Confirm("Packaged zip for '" + folder.Name + "' is older than its source folder; upload it anyway?")
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrDeclined
		}
	}

	if st.Redundant {
		ok, err := e.confirmer.Confirm("'" + folder.Name + "' was already uploaded at its current state; upload again?")
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrDeclined
		}
	}

	replaced, err := e.client.UploadListingFile(ctx, e.shopID, assoc.EtsyListingID, folder.ArtifactPath())
	if err != nil {
		return err
	}
	if !replaced {
		e.logger.Info().Str("product", folder.Name).Msg("listing already had this file; nothing uploaded")
	} else {
		e.logger.Info().
			Str("product", folder.Name).
			Str("listing_id", assoc.EtsyListingID).
			Msg("uploaded")
	}

	// The remote is now confirmed current for this artifact state, whether
	// we pushed bytes or the provider already held them.
	watermark := utc.New(st.ArtifactModTime)
	assoc.LastUpload = &watermark
	return catalog.WriteMetadata(folder.Path, assoc)
}

// Run reconciles and uploads every product folder under root. Skipped and
// declined folders are logged and passed over; real failures abort the run.
func (e *Engine) Run(ctx context.Context, root string) error {
	folders, err := Scan(root)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		return errors.NewNotFoundError("product folders", root)
	}
	e.logger.Info().Int("count", len(folders)).Str("workspace", root).Msg("found product folders")

	for _, folder := range folders {
		assoc, outcome, err := e.Resolve(folder)
		if err != nil {
			return err
		}
		if outcome != Mapped {
			e.logger.Warn().Str("product", folder.Name).Msg("no listing association; skipped")
			continue
		}

		if err := e.UploadProduct(ctx, folder, assoc); err != nil {
			if errors.IsDeclined(err) {
				e.logger.Info().Str("product", folder.Name).Msg("upload declined; skipped")
				continue
			}
			if errors.IsNotFound(err) {
				e.logger.Warn().Str("product", folder.Name).Str("artifact", folder.ArtifactPath()).Msg("no packaged zip; skipped")
				continue
			}
			return err
		}
	}
	return nil
}
