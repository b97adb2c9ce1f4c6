package publish

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"strings"

	"github.com/raccoonpkg/rack/pkg/errs"
)

const manifestEntry = "package.json"

// maxManifestSize bounds the manifest read so a hostile archive cannot make
// the extractor allocate without limit.
const maxManifestSize = 1 << 20

// extractManifest pulls the raw package.json entry out of a tar archive,
// gzip-compressed or plain. The rest of the archive is never unpacked; the
// registry stores it as an opaque blob.
func extractManifest(archive []byte) ([]byte, error) {
	var reader io.Reader = bytes.NewReader(archive)
	if gz, err := gzip.NewReader(bytes.NewReader(archive)); err == nil {
		defer gz.Close()
		reader = gz
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, errs.New(errs.KindPackage, "filename 'package.json' not found")
		}
		if err != nil {
			return nil, errs.Wrap(errs.KindPackage, "file is not a tar archive", err)
		}
		if strings.TrimPrefix(header.Name, "./") != manifestEntry {
			continue
		}

		raw, err := io.ReadAll(io.LimitReader(tr, maxManifestSize))
		if err != nil {
			return nil, errs.Wrap(errs.KindPackage, "failed to read 'package.json'", err)
		}
		return raw, nil
	}
}
