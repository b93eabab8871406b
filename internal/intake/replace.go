package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"tagdock/internal/dupcache"
	"tagdock/internal/fingerprint"
	"tagdock/internal/logging"
	"tagdock/internal/records"
	"tagdock/internal/services"
)

// maxReplacementBytes caps how much replacement content is pulled into
// memory from the remote locator.
const maxReplacementBytes = 64 << 20

// Replace swaps one stored copy for new content fetched from a URL. The
// matching list element is updated in place; the record's order and
// length do not change. The volatile cache entry for the old fingerprint
// is evicted and a fresh entry is written for the new one.
func (c *Coordinator) Replace(ctx context.Context, tagID string, oldFp fingerprint.Digest, newContentURL string) (string, error) {
	tagID = strings.TrimSpace(tagID)
	if tagID == "" {
		return "", services.Wrap(services.ErrValidation, "intake", "replace", "tag identifier required", nil)
	}
	if oldFp == "" {
		return "", services.Wrap(services.ErrValidation, "intake", "replace", "old fingerprint required", nil)
	}
	parsed, err := url.Parse(newContentURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", services.Wrap(services.ErrValidation, "intake", "replace", "content URL must be http or https", err)
	}

	content, err := c.fetch(ctx, newContentURL)
	if err != nil {
		return "", err
	}

	newFp := fingerprint.Bytes(content)
	fileName := replacementFileName(parsed)
	location, err := c.blobs.Put(ctx, bytes.NewReader(content), artifactFolder, fileName)
	if err != nil {
		return "", services.Wrap(services.ErrUpload, "intake", "replace", "store replacement content", err)
	}

	newCopy := records.Copy{
		FileName:    fileName,
		Location:    location,
		Fingerprint: newFp,
	}
	if err := c.store.ReplaceCopy(ctx, tagID, oldFp, newCopy); err != nil {
		if errors.Is(err, records.ErrCopyNotFound) {
			return "", services.Wrap(services.ErrNotFound, "intake", "replace", "no copy with that fingerprint under the tag", err)
		}
		return "", services.Wrap(services.ErrPersistence, "intake", "replace", "replace copy", err)
	}

	c.cache.Evict(ctx, oldFp)
	c.cache.Populate(ctx, newFp, dupcache.Entry{TagID: tagID, Location: location})

	logging.WithContext(ctx, c.logger).Info("copy replaced",
		logging.String(logging.FieldTagID, tagID),
		logging.String("old_fingerprint", oldFp.String()),
		logging.String(logging.FieldFingerprint, newFp.String()))
	return location, nil
}

func (c *Coordinator) fetch(ctx context.Context, contentURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrUpload, "intake", "fetch-replacement", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpload, "intake", "fetch-replacement", "fetch replacement content", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrUpload, "intake", "fetch-replacement",
			fmt.Sprintf("fetch replacement content: status %d", resp.StatusCode), nil)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxReplacementBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrUpload, "intake", "fetch-replacement", "read replacement content", err)
	}
	if len(content) > maxReplacementBytes {
		return nil, services.Wrap(services.ErrValidation, "intake", "fetch-replacement", "replacement content too large", nil)
	}
	return content, nil
}

func replacementFileName(parsed *url.URL) string {
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "replacement"
	}
	return name
}
