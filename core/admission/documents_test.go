package admission_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/udahili/core/admission"
	testutil "github.com/trezcool/udahili/tests"
)

func TestService_AttachDocument(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 fake report card")

	t.Run("stored bytes round-trip through the descriptor URI", func(t *testing.T) {
		svc, repo, blobStore, _ := setup(t)
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		desc, err := svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "reportCard",
			Content:     bytes.NewReader(pdfBytes),
			ContentType: "application/pdf",
			SizeBytes:   int64(len(pdfBytes)),
		})
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", desc.ContentType)
		assert.Equal(t, int64(len(pdfBytes)), desc.SizeBytes)
		assert.False(t, desc.UploadedAt.IsZero())

		stored, err := blobStore.Get(desc.URI)
		require.NoError(t, err)
		assert.Equal(t, pdfBytes, stored)

		updated, err := repo.GetApplicationByID(app.ID)
		require.NoError(t, err)
		got, ok := updated.Document("reportCard")
		require.True(t, ok)
		assert.Equal(t, desc, got)
	})

	t.Run("re-upload replaces the descriptor", func(t *testing.T) {
		svc, repo, blobStore, _ := setup(t)
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		first, err := svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "idPhoto",
			Content:     strings.NewReader("old photo"),
			ContentType: "image/jpeg",
			SizeBytes:   9,
		})
		require.NoError(t, err)
		second, err := svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "idPhoto",
			Content:     strings.NewReader("new photo"),
			ContentType: "image/png",
			SizeBytes:   9,
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.URI, second.URI)

		updated, err := repo.GetApplicationByID(app.ID)
		require.NoError(t, err)
		require.Len(t, updated.Documents, 1)
		got, _ := updated.Document("idPhoto")
		assert.Equal(t, second, got)
		assert.Equal(t, 2, blobStore.Len()) // replaced upload retained by default
	})

	t.Run("re-upload deletes the replaced blob when configured", func(t *testing.T) {
		svc, repo, blobStore, conf := setup(t)
		conf.Admission.DeleteReplacedUploads = true
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		first, err := svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "idPhoto",
			Content:     strings.NewReader("old photo"),
			ContentType: "image/jpeg",
			SizeBytes:   9,
		})
		require.NoError(t, err)
		_, err = svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "idPhoto",
			Content:     strings.NewReader("new photo"),
			ContentType: "image/jpeg",
			SizeBytes:   9,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, blobStore.Len())
		_, err = blobStore.Get(first.URI)
		assert.Error(t, err)
	})

	t.Run("size limit boundary", func(t *testing.T) {
		svc, repo, blobStore, conf := setup(t)
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)
		max := conf.Admission.MaxUploadBytes

		_, err := svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "birthCertificate",
			Content:     bytes.NewReader(pdfBytes),
			ContentType: "application/pdf",
			SizeBytes:   max, // exactly at the limit is fine
		})
		require.NoError(t, err)

		_, err = svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "birthCertificate",
			Content:     bytes.NewReader(pdfBytes),
			ContentType: "application/pdf",
			SizeBytes:   max + 1,
		})
		assert.Equal(t, admission.ErrPayloadTooLarge, errors.Cause(err))
		assert.Equal(t, 1, blobStore.Len())
	})

	t.Run("unknown document type", func(t *testing.T) {
		svc, repo, blobStore, _ := setup(t)
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		_, err := svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "diploma",
			Content:     bytes.NewReader(pdfBytes),
			ContentType: "application/pdf",
			SizeBytes:   int64(len(pdfBytes)),
		})
		assert.Equal(t, admission.ErrUnsupportedDocumentType, errors.Cause(err))
		assert.Equal(t, 0, blobStore.Len())
	})

	t.Run("content type not allowed for the document type", func(t *testing.T) {
		svc, repo, _, _ := setup(t)
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		// idPhoto accepts images only
		_, err := svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "idPhoto",
			Content:     bytes.NewReader(pdfBytes),
			ContentType: "application/pdf",
			SizeBytes:   int64(len(pdfBytes)),
		})
		assert.Equal(t, admission.ErrUnsupportedContentType, errors.Cause(err))
	})

	t.Run("unknown application leaves the blob store empty", func(t *testing.T) {
		svc, _, blobStore, _ := setup(t)

		_, err := svc.AttachDocument("deadbeef", admission.NewDocument{
			Type:        "reportCard",
			Content:     bytes.NewReader(pdfBytes),
			ContentType: "application/pdf",
			SizeBytes:   int64(len(pdfBytes)),
		})
		assert.Equal(t, admission.ErrNotFound, errors.Cause(err))
		assert.Equal(t, 0, blobStore.Len())
	})
}

func TestService_DetachDocument(t *testing.T) {
	t.Run("detaching removes the entry and the blob", func(t *testing.T) {
		svc, repo, blobStore, _ := setup(t)
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		_, err := svc.AttachDocument(app.ID, admission.NewDocument{
			Type:        "goodMoralCertificate",
			Content:     strings.NewReader("certified"),
			ContentType: "application/pdf",
			SizeBytes:   9,
		})
		require.NoError(t, err)

		updated, err := svc.DetachDocument(app.ID, "goodMoralCertificate")
		require.NoError(t, err)
		_, ok := updated.Document("goodMoralCertificate")
		assert.False(t, ok)
		assert.Equal(t, 0, blobStore.Len())
	})

	t.Run("nothing attached under the type", func(t *testing.T) {
		svc, repo, _, _ := setup(t)
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		_, err := svc.DetachDocument(app.ID, "idPhoto")
		assert.Equal(t, admission.ErrNotFound, errors.Cause(err))
	})

	t.Run("unknown application", func(t *testing.T) {
		svc, _, _, _ := setup(t)

		_, err := svc.DetachDocument("deadbeef", "idPhoto")
		assert.Equal(t, admission.ErrNotFound, errors.Cause(err))
	})
}
