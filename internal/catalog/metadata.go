package catalog

import (
	"encoding/json"
	"os"

	"github.com/dkstudio/shopsync/pkg/errors"
)

// MetadataSuffix is appended to an artifact's own path to name its sidecar
// file. Keying by path rather than a synthetic id lets the metadata travel
// with a renamed or relocated folder's sibling marker file, but not with
// the folder itself if it is moved without its marker.
const MetadataSuffix = ".product.json"

// WriteMetadata attaches a structured record to an arbitrary file-system
// path by writing a sidecar file next to it.
func WriteMetadata(path string, record any) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	sidecar := path + MetadataSuffix
	if err := os.WriteFile(sidecar, data, 0o644); err != nil {
		return errors.WrapIO("write", sidecar, err)
	}
	return nil
}

// ReadMetadata decodes the sidecar record for path into out. A missing
// sidecar is reported as found=false; a corrupt one is a fatal ParseError.
func ReadMetadata(path string, out any) (bool, error) {
	sidecar := path + MetadataSuffix
	data, err := os.ReadFile(sidecar)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapIO("read", sidecar, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.WrapParse("json", sidecar, err)
	}
	return true, nil
}
