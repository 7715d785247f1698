package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/udahili/apps/api/echo"
	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
	emailsvc "github.com/trezcool/udahili/services/email"
	dummyblob "github.com/trezcool/udahili/storage/blob/dummy"
	dummydb "github.com/trezcool/udahili/storage/database/dummy"
	testutil "github.com/trezcool/udahili/tests"
)

var (
	appRepo admission.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func setup(t *testing.T) (Server, *core.Config) {
	t.Helper()

	conf := testutil.NewConfig(t)

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	appRepo = dummydb.NewApplicationRepository(db)

	// set up services
	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	appSvc := admission.NewServiceMock(appRepo, dummyblob.NewStore(), mailSvc, conf, testutil.NewLogger())

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	admission.InitValidators(validate, translator)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:         conf,
			Logger:       testutil.NewLogger(),
			AdmissionSvc: appSvc,
			Validate:     validate,
			Translator:   translator,
		},
	), conf
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest builds a multipart/form-data document upload.
func newUploadRequest(t *testing.T, path, docType, filename, contentType string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("type", docType); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	if _, err = part.Write(content); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

func getStaffToken(t *testing.T, conf *core.Config, name string) string {
	claims := GetStaffClaims(conf, name)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getStaffToken(): %v", err)
	}
	return token
}

func getNonStaffToken(t *testing.T, conf *core.Config, name string) string {
	claims := GetStaffClaims(conf, name)
	claims.Staff = false
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getNonStaffToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
