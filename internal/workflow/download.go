package workflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/pkg/disposition"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/storage"
)

const msgDownloadFailed = "failed to download the convocation archive"

type archiveFetcher interface {
	Download(ctx context.Context, sessionID string) (*models.Archive, error)
}

// Sink receives a downloaded archive under its derived filename and returns
// where it ended up.
type Sink interface {
	Accept(filename string, archive *models.Archive) (string, error)
}

// Downloader fetches the archive of a session and hands it to a sink.
type Downloader struct {
	fetcher archiveFetcher
	env     Env
}

// NewDownloader constructs a Downloader.
func NewDownloader(fetcher archiveFetcher, env Env) *Downloader {
	return &Downloader{fetcher: fetcher, env: env.withDefaults()}
}

// Download retrieves the archive of sessionID. The filename comes from the
// Content-Disposition header and falls back to the default archive name.
func (d *Downloader) Download(ctx context.Context, sessionID string, sink Sink) (string, error) {
	if isBlank(sessionID) {
		return "", appErrors.ErrMissingSession
	}
	release, ok := d.env.Guard.TryStart(d.env.key("download"))
	if !ok {
		return "", appErrors.ErrInFlight
	}
	defer release()

	archive, err := d.fetcher.Download(ctx, sessionID)
	if err != nil {
		d.fail(sessionID, err)
		return "", err
	}
	defer archive.Body.Close()

	name := disposition.Filename(archive.Disposition, disposition.DefaultArchiveName)
	location, err := sink.Accept(name, archive)
	if err != nil {
		d.fail(sessionID, err)
		return "", err
	}
	d.env.Logger.Info("convocation archive delivered",
		zap.String("session_id", sessionID),
		zap.String("filename", name),
		zap.String("location", location))
	return location, nil
}

func (d *Downloader) fail(sessionID string, err error) {
	d.env.Logger.Warn("archive download failed", zap.String("session_id", sessionID), zap.Error(err))
	d.env.Notifier.Notify(failure(msgDownloadFailed))
}

// StorageSink writes archives into local storage. Content is staged in a
// temporary file that is removed on every failure path.
type StorageSink struct {
	Storage *storage.LocalStorage
}

// Accept implements Sink.
func (s StorageSink) Accept(filename string, archive *models.Archive) (string, error) {
	staged, err := s.Storage.Stage(filename)
	if err != nil {
		return "", err
	}
	defer func() { _ = staged.Discard() }()

	if _, err := staged.ReadFrom(archive.Body); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "archive transfer interrupted")
	}
	return staged.Commit()
}

// ResponseSink streams archives straight to an HTTP client as attachments.
type ResponseSink struct {
	W http.ResponseWriter

	started bool
}

// Accept implements Sink.
func (s *ResponseSink) Accept(filename string, archive *models.Archive) (string, error) {
	header := s.W.Header()
	contentType := archive.ContentType
	if contentType == "" || strings.HasPrefix(contentType, "application/json") {
		contentType = "application/zip"
	}
	header.Set("Content-Type", contentType)
	header.Set("Content-Disposition", disposition.Attachment(filename))
	if archive.ContentLength > 0 {
		header.Set("Content-Length", strconv.FormatInt(archive.ContentLength, 10))
	}
	s.started = true
	s.W.WriteHeader(http.StatusOK)
	if _, err := io.Copy(s.W, archive.Body); err != nil {
		return "", fmt.Errorf("stream archive: %w", err)
	}
	return filename, nil
}

// Started reports whether headers were already sent, after which an error
// can no longer be reported to the client.
func (s *ResponseSink) Started() bool {
	return s.started
}
