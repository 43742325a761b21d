package webdav

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/org/passvault/internal/snapshot"
	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/internal/vault"
	"github.com/org/passvault/pkg/models"
)

// backupMarker must appear in a listing basename for the file to count as one
// of ours. Preserved business rule: files named otherwise are invisible to
// List even if they hold valid envelopes.
const backupMarker = "password-backup"

// StatusError is an upstream failure carrying the remote status code.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webdav %s failed: remote returned %d", e.Op, e.Code)
}

// Service talks to a user's WebDAV endpoint to store, retrieve, delete and
// list encrypted snapshot files. Each call reads the per-user config, so a
// config change applies to the next operation with no restart.
type Service struct {
	store storage.Backend
	vault *vault.Store
	codec *snapshot.Codec
	http  *http.Client
}

// NewService creates a Service. A nil client gets a 30s-timeout default; a
// slow WebDAV server stalls only the one request that hit it.
func NewService(store storage.Backend, v *vault.Store, codec *snapshot.Codec, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{store: store, vault: v, codec: codec, http: client}
}

// DefaultFilename names a backup after the current UTC date. The name passes
// the List filter by construction.
func DefaultFilename() string {
	return fmt.Sprintf("%s-%s.json", backupMarker, time.Now().UTC().Format("2006-01-02"))
}

// Backup snapshots the user's vault under backupPassword and PUTs it to the
// configured endpoint. An empty filename gets the date-based default. Returns
// the filename used.
func (s *Service) Backup(ctx context.Context, userID, filename, backupPassword string) (string, error) {
	cfg, err := s.credentials(ctx, userID)
	if err != nil {
		return "", err
	}
	if filename == "" {
		filename = DefaultFilename()
	}

	env, err := s.codec.Backup(ctx, userID, backupPassword)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshaling envelope: %w", err)
	}

	resp, err := s.do(ctx, cfg, http.MethodPut, fileURL(cfg.URL, filename), bytes.NewReader(body), nil)
	if err != nil {
		return "", fmt.Errorf("webdav put: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Op: "backup", Code: resp.StatusCode}
	}
	return filename, nil
}

// Restore GETs a snapshot file, opens it with restorePassword, and imports
// its entries with the snapshot codec's per-entry tolerance.
func (s *Service) Restore(ctx context.Context, userID, filename, restorePassword string) (models.ImportResult, error) {
	cfg, err := s.credentials(ctx, userID)
	if err != nil {
		return models.ImportResult{}, err
	}

	resp, err := s.do(ctx, cfg, http.MethodGet, fileURL(cfg.URL, filename), nil, nil)
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("webdav get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ImportResult{}, &StatusError{Op: "restore", Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("reading webdav response: %w", err)
	}
	var env models.EncryptedEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.ImportResult{}, snapshot.ErrDecryptFailed
	}
	return s.codec.Import(ctx, userID, &env, restorePassword)
}

// Delete removes a snapshot file from the remote endpoint.
func (s *Service) Delete(ctx context.Context, userID, filename string) error {
	cfg, err := s.credentials(ctx, userID)
	if err != nil {
		return err
	}
	resp, err := s.do(ctx, cfg, http.MethodDelete, fileURL(cfg.URL, filename), nil, nil)
	if err != nil {
		return fmt.Errorf("webdav delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "delete", Code: resp.StatusCode}
	}
	return nil
}

// List issues a Depth:1 PROPFIND against the base URL and returns the
// basenames of .json files containing the backup marker.
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	cfg, err := s.credentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.do(ctx, cfg, "PROPFIND", strings.TrimRight(cfg.URL, "/"), nil, map[string]string{"Depth": "1"})
	if err != nil {
		return nil, fmt.Errorf("webdav propfind: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: "list", Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading propfind response: %w", err)
	}
	return filterBackupFiles(parseHrefs(body)), nil
}

func (s *Service) do(ctx context.Context, cfg *models.WebDAVConfig, method, rawURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg.Username, cfg.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.http.Do(req)
}

func fileURL(base, filename string) string {
	return strings.TrimRight(base, "/") + "/" + filename
}

// multistatus is the subset of a PROPFIND response we care about. Element
// names are matched by local name, so any namespace prefix works.
type multistatus struct {
	Responses []struct {
		Href string `xml:"href"`
	} `xml:"response"`
}

func parseHrefs(body []byte) []string {
	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil
	}
	hrefs := make([]string, 0, len(ms.Responses))
	for _, r := range ms.Responses {
		hrefs = append(hrefs, strings.TrimSpace(r.Href))
	}
	return hrefs
}

func filterBackupFiles(hrefs []string) []string {
	var files []string
	for _, href := range hrefs {
		name := path.Base(href)
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		if strings.HasSuffix(name, ".json") && strings.Contains(name, backupMarker) {
			files = append(files, name)
		}
	}
	return files
}
