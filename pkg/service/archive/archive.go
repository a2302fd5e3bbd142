// Package archive stores rendered reports on the local disk or in Google
// Cloud Storage, chosen by the destination: "gs://bucket/object" goes to
// Cloud Storage and anything else is a file path.
package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	"github.com/secmon-lab/argus/pkg/utils/safe"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// Destination is a parsed store target. Path is set for local files, Bucket
// and Object for Cloud Storage.
type Destination struct {
	Path   string
	Bucket string
	Object string
}

// IsGCS reports whether the destination is a Cloud Storage object
func (d Destination) IsGCS() bool {
	return d.Bucket != ""
}

func (d Destination) String() string {
	if d.IsGCS() {
		return gcsScheme + d.Bucket + "/" + d.Object
	}
	return d.Path
}

// ParseDestination splits a destination string
func ParseDestination(dest string) (Destination, error) {
	if dest == "" {
		return Destination{}, goerr.Wrap(types.ErrInvalidArgument, "destination is required")
	}
	if !strings.HasPrefix(dest, gcsScheme) {
		return Destination{Path: dest}, nil
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(dest, gcsScheme), "/")
	if !ok || bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return Destination{}, goerr.Wrap(types.ErrInvalidArgument, "destination must be gs://bucket/object",
			goerr.V(types.ValueKey, dest))
	}
	return Destination{Bucket: bucket, Object: object}, nil
}

// Service writes reports to their destination. The Cloud Storage client is
// created on first use.
type Service struct {
	gcsOptions []option.ClientOption

	mu  sync.Mutex
	gcs *storage.Client
}

type Option func(*Service)

// WithGCSClient sets the Cloud Storage client, mainly for tests
func WithGCSClient(client *storage.Client) Option {
	return func(s *Service) {
		s.gcs = client
	}
}

// WithGCSOptions passes client options to storage.NewClient
func WithGCSOptions(opts ...option.ClientOption) Option {
	return func(s *Service) {
		s.gcsOptions = append(s.gcsOptions, opts...)
	}
}

func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) client(ctx context.Context) (*storage.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs != nil {
		return s.gcs, nil
	}
	client, err := storage.NewClient(ctx, s.gcsOptions...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}
	s.gcs = client
	return client, nil
}

// Close releases the Cloud Storage client if one was created
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs == nil {
		return nil
	}
	err := s.gcs.Close()
	s.gcs = nil
	return err
}

// Store calls write with a writer for dest. Nothing is left at dest when
// write fails.
func (s *Service) Store(ctx context.Context, dest, contentType string, write func(w io.Writer) error) error {
	d, err := ParseDestination(dest)
	if err != nil {
		return err
	}

	if d.IsGCS() {
		err = s.storeGCS(ctx, d, contentType, write)
	} else {
		err = storeFile(ctx, d.Path, write)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to store report", goerr.V("destination", d.String()))
	}

	logging.From(ctx).Info("report stored", "destination", d.String(), "content_type", contentType)
	return nil
}

// storeFile writes to a temporary file next to path and renames it into place
func storeFile(ctx context.Context, path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("dir", dir))
	}

	if err := write(tmp); err != nil {
		safe.Close(ctx, tmp)
		safe.Remove(ctx, tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		safe.Remove(ctx, tmp.Name())
		return goerr.Wrap(err, "failed to close temporary file", goerr.V("path", tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		safe.Remove(ctx, tmp.Name())
		return goerr.Wrap(err, "failed to move report into place", goerr.V("path", path))
	}
	return nil
}

func (s *Service) storeGCS(ctx context.Context, d Destination, contentType string, write func(w io.Writer) error) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}

	// cancelling the writer's context aborts the upload
	uploadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := client.Bucket(d.Bucket).Object(d.Object).NewWriter(uploadCtx)
	w.ContentType = contentType

	if err := write(w); err != nil {
		cancel()
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finish upload", goerr.V("bucket", d.Bucket), goerr.V("object", d.Object))
	}
	return nil
}
