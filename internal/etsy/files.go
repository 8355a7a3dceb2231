package etsy

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dkstudio/shopsync/pkg/errors"
)

// uploadFieldName is the multipart field the provider expects the file
// under.
const uploadFieldName = "file"

// zipContentType is the declared content type for packaged product assets.
const zipContentType = "application/zip"

// alreadyAttachedText is the provider-contract fragment identifying the
// "this exact file is already attached" conflict. The comparison lives in
// one place because the provider has not been consistent about the full
// sentence across API revisions.
const alreadyAttachedText = "already has a file attached"

// ListingFile is one file attachment on a listing.
type ListingFile struct {
	ID       string
	Filename string
	Filetype string
}

// ListingFiles lists the file attachments on a listing.
func (c *Client) ListingFiles(ctx context.Context, shopID, listingID string) ([]ListingFile, error) {
	result, err := c.Get(ctx, listingFilesPath(shopID, listingID), nil)
	if err != nil {
		return nil, err
	}

	items, _ := result["results"].([]any)
	files := make([]ListingFile, 0, len(items))
	for _, item := range items {
		entity, ok := item.(map[string]any)
		if !ok {
			continue
		}
		lf := ListingFile{ID: EntityID(entity["listing_file_id"])}
		lf.Filename, _ = entity["filename"].(string)
		lf.Filetype, _ = entity["filetype"].(string)
		files = append(files, lf)
	}
	return files, nil
}

// UploadListingFile attaches the zip at zipPath to a listing. The returned
// bool reports whether the remote attachment changed: false means the
// provider already had this exact file, which is a no-op, not an error.
//
// When the upload supersedes a previously attached zip, the prior
// attachment is deleted by id only after the new upload is confirmed, so
// the old asset stays available until the new one is live. Never
// delete-before-create.
func (c *Client) UploadListingFile(ctx context.Context, shopID, listingID, zipPath string) (bool, error) {
	data, err := os.ReadFile(zipPath)
	if err != nil {
		return false, errors.WrapIO("read", zipPath, err)
	}
	filename := filepath.Base(zipPath)

	existing, err := c.ListingFiles(ctx, shopID, listingID)
	if err != nil {
		return false, err
	}
	priorZipID := ""
	for _, lf := range existing {
		if strings.HasSuffix(strings.ToUpper(lf.Filetype), "ZIP") {
			priorZipID = lf.ID
		}
	}

	result, err := c.call(ctx, "POST", listingFilesPath(shopID, listingID), nil, nil, &multipart{
		field:       uploadFieldName,
		filename:    filename,
		contentType: zipContentType,
		data:        data,
		form:        map[string]string{"name": filename},
	})
	if err != nil {
		if isAlreadyAttached(err) {
			// Remote already holds this exact file; leave it untouched.
			return false, nil
		}
		return false, err
	}

	newID := EntityID(result["listing_file_id"])
	if priorZipID != "" && priorZipID != newID {
		if err := c.DeleteListingFile(ctx, shopID, listingID, priorZipID); err != nil {
			return true, err
		}
	}
	return true, nil
}

// DeleteListingFile removes a file attachment by id.
func (c *Client) DeleteListingFile(ctx context.Context, shopID, listingID, fileID string) error {
	_, err := c.Delete(ctx, listingFilesPath(shopID, listingID)+"/"+fileID, nil)
	return err
}

// isAlreadyAttached recognizes the provider's duplicate-attachment
// conflict.
func isAlreadyAttached(err error) bool {
	var provErr *errors.ProviderError
	if !errors.As(err, &provErr) {
		return false
	}
	return strings.Contains(strings.ToLower(provErr.Description), alreadyAttachedText)
}

func listingFilesPath(shopID, listingID string) string {
	return "/application/shops/" + shopID + "/listings/" + listingID + "/files"
}
