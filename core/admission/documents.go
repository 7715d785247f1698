package admission

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
)

var contentTypeExts = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// AttachDocument validates nd against the configured limits, stores the
// bytes in the blob store and records the descriptor under nd.Type.
// Re-uploading an existing type replaces the descriptor atomically; the
// previous blob is deleted only when deleteReplacedUploads is on, and then
// only best-effort.
func (svc *service) AttachDocument(id string, nd NewDocument) (DocumentDescriptor, error) {
	docType := core.CleanString(nd.Type)
	contentType := core.CleanString(nd.ContentType, true /* lower */)

	allowedTypes, ok := svc.conf.Admission.AllowedDocumentTypes[strings.ToLower(docType)]
	if !ok {
		return DocumentDescriptor{}, errors.Wrapf(ErrUnsupportedDocumentType, "%q", docType)
	}
	if !contains(allowedTypes, contentType) {
		return DocumentDescriptor{}, errors.Wrapf(ErrUnsupportedContentType, "%q for document %q", contentType, docType)
	}
	if max := svc.conf.Admission.MaxUploadBytes; nd.SizeBytes > max {
		return DocumentDescriptor{}, errors.Wrapf(ErrPayloadTooLarge, "%d > %d bytes", nd.SizeBytes, max)
	}

	// fail fast on unknown ids before touching the blob store
	if _, err := svc.repo.GetApplicationByID(id); err != nil {
		return DocumentDescriptor{}, err
	}

	key := fmt.Sprintf("applications/%s/%s-%s%s", id, docType, uuid.New().String(), contentTypeExts[contentType])
	uri, err := svc.blob.Put(nd.Content, key)
	if err != nil {
		return DocumentDescriptor{}, errors.Wrap(err, "storing document")
	}

	desc := DocumentDescriptor{
		URI:         uri,
		ContentType: contentType,
		SizeBytes:   nd.SizeBytes,
		UploadedAt:  time.Now().UTC(),
	}

	var replaced *DocumentDescriptor
	if _, err = svc.repo.UpdateApplicationAtomic(id, func(app *Application) error {
		if old, ok := app.Documents[docType]; ok {
			replaced = &old
		}
		if app.Documents == nil {
			app.Documents = make(map[string]DocumentDescriptor)
		}
		app.Documents[docType] = desc
		app.UpdatedAt = desc.UploadedAt
		return nil
	}); err != nil {
		svc.deleteBlob(uri) // do not leak the orphaned upload
		return DocumentDescriptor{}, err
	}

	if replaced != nil && svc.conf.Admission.DeleteReplacedUploads {
		svc.deleteBlob(replaced.URI)
	}
	return desc, nil
}

// DetachDocument clears the mapping entry for docType. Deletion of the
// underlying blob is best-effort.
func (svc *service) DetachDocument(id, docType string) (Application, error) {
	docType = core.CleanString(docType)

	var detached DocumentDescriptor
	app, err := svc.repo.UpdateApplicationAtomic(id, func(app *Application) error {
		desc, ok := app.Documents[docType]
		if !ok {
			return errors.Wrapf(ErrNotFound, "no %q document attached", docType)
		}
		detached = desc
		delete(app.Documents, docType)
		app.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return Application{}, err
	}

	svc.deleteBlob(detached.URI)
	return app, nil
}

func (svc *service) deleteBlob(uri string) {
	if err := svc.blob.Delete(uri); err != nil {
		svc.logger.Warn(fmt.Sprintf("deleting blob %s: %v", uri, err), err)
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
