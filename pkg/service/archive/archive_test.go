package archive_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/service/archive"
)

func TestParseDestination(t *testing.T) {
	testCases := []struct {
		name    string
		dest    string
		want    archive.Destination
		wantErr bool
	}{
		{"file", "out/report.csv", archive.Destination{Path: "out/report.csv"}, false},
		{"gcs", "gs://reports/plant/2026-03.csv", archive.Destination{Bucket: "reports", Object: "plant/2026-03.csv"}, false},
		{"gcs without object", "gs://reports", archive.Destination{}, true},
		{"gcs with trailing slash", "gs://reports/plant/", archive.Destination{}, true},
		{"empty", "", archive.Destination{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := archive.ParseDestination(tc.dest)
			if tc.wantErr {
				gt.Error(t, err).Is(types.ErrInvalidArgument)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tc.want)
			gt.Value(t, got.String()).Equal(tc.dest)
		})
	}
}

func TestStore_File(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "report.csv")
	svc := archive.New()

	err := svc.Store(ctx, path, "text/csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "section,key\n")
		return err
	})
	gt.NoError(t, err).Required()

	data, err := os.ReadFile(path)
	gt.NoError(t, err).Required()
	gt.Value(t, string(data)).Equal("section,key\n")
}

func TestStore_FileWriteFails(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	errRender := errors.New("render failed")

	err := archive.New().Store(ctx, path, "text/csv", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errRender
	})
	gt.Error(t, err).Is(errRender)

	entries, err := os.ReadDir(dir)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(0)
}

func TestStore_GCS(t *testing.T) {
	bucket, ok := os.LookupEnv("TEST_GCS_BUCKET")
	if !ok {
		t.Skip("TEST_GCS_BUCKET is not set")
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	gt.NoError(t, err).Required()
	svc := archive.New(archive.WithGCSClient(client))
	defer func() { _ = svc.Close() }()

	object := "argus-test/" + uuid.NewString() + ".json"
	err = svc.Store(ctx, "gs://"+bucket+"/"+object, "application/json", func(w io.Writer) error {
		_, err := io.WriteString(w, `{"ok":true}`)
		return err
	})
	gt.NoError(t, err).Required()

	obj := client.Bucket(bucket).Object(object)
	defer func() { _ = obj.Delete(ctx) }()

	r, err := obj.NewReader(ctx)
	gt.NoError(t, err).Required()
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	gt.NoError(t, err).Required()
	gt.Value(t, string(data)).Equal(`{"ok":true}`)
}
