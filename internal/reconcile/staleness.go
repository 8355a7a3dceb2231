package reconcile

import (
	"os"
	"time"

	"github.com/dkstudio/shopsync/pkg/errors"
)

// Staleness is the result of the pre-upload artifact check.
type Staleness struct {
	// ArtifactModTime is the packaged artifact's last-modified time; this
	// is what becomes the watermark after a confirmed upload.
	ArtifactModTime time.Time

	// ArtifactStale means the source folder changed after the artifact was
	// packaged: the zip must be rebuilt or the upload re-confirmed.
	ArtifactStale bool

	// Redundant means the watermark is at or after the artifact's modified
	// time: the remote already has this state and an upload needs explicit
	// confirmation.
	Redundant bool
}

// CheckStaleness compares the packaged artifact against its source folder
// and the association's last-upload watermark. It runs before any network
// call. A missing artifact is a NotFoundError: there is nothing to upload.
func CheckStaleness(folder Folder, assoc Association) (Staleness, error) {
	artifact, err := os.Stat(folder.ArtifactPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Staleness{}, errors.NewNotFoundError("artifact", folder.ArtifactPath())
		}
		return Staleness{}, errors.WrapIO("stat", folder.ArtifactPath(), err)
	}

	st := Staleness{ArtifactModTime: artifact.ModTime()}

	source, err := os.Stat(folder.Path)
	if err != nil {
		return Staleness{}, errors.WrapIO("stat", folder.Path, err)
	}
	if source.ModTime().After(st.ArtifactModTime) {
		st.ArtifactStale = true
	}

	if assoc.LastUpload != nil && !assoc.LastUpload.Time.Before(st.ArtifactModTime) {
		st.Redundant = true
	}

	return st, nil
}
