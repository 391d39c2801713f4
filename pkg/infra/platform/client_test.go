package platform_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scormpack/pkg/infra/platform"
)

const courseEnvelope = `{
	"responseCode": "OK",
	"result": {
		"content": {
			"identifier": "do_113123456789",
			"name": "Annual Training Module",
			"mimeType": "application/vnd.ekstep.content-collection",
			"childNodes": ["do_mod1", "do_mod2"]
		}
	}
}`

func TestGetContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/api/content/v1/read/do_113123456789")
		fmt.Fprint(w, courseEnvelope)
	}))
	defer srv.Close()

	client := platform.NewClient(platform.WithBaseURL(srv.URL), platform.WithRetryInterval(time.Millisecond))

	content, err := client.GetContent(context.Background(), "do_113123456789")
	gt.NoError(t, err)
	gt.Value(t, content.Identifier.String()).Equal("do_113123456789")
	gt.Value(t, content.Name).Equal("Annual Training Module")
	gt.False(t, content.IsSCORM())
	gt.Number(t, len(content.ChildNodes)).Equal(2)
}

func TestGetContent_RetriesTransientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, courseEnvelope)
	}))
	defer srv.Close()

	client := platform.NewClient(platform.WithBaseURL(srv.URL), platform.WithRetryInterval(time.Millisecond))

	content, err := client.GetContent(context.Background(), "do_113123456789")
	gt.NoError(t, err)
	gt.Value(t, content.Name).Equal("Annual Training Module")
	gt.Number(t, attempts.Load()).Equal(3)
}

func TestGetContent_StopsAfterThreeAttempts(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := platform.NewClient(platform.WithBaseURL(srv.URL), platform.WithRetryInterval(time.Millisecond))

	_, err := client.GetContent(context.Background(), "do_unreachable")
	gt.Error(t, err)
	gt.Number(t, attempts.Load()).Equal(3)
}

func TestGetContent_NoRetryOnPlatformRejection(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, `{"responseCode":"RESOURCE_NOT_FOUND","params":{"errmsg":"no such content"},"result":{}}`)
	}))
	defer srv.Close()

	client := platform.NewClient(platform.WithBaseURL(srv.URL), platform.WithRetryInterval(time.Millisecond))

	_, err := client.GetContent(context.Background(), "do_missing")
	gt.Error(t, err)
	gt.Number(t, attempts.Load()).Equal(1)
}

func TestGetContent_NoRetryOnNotFound(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := platform.NewClient(platform.WithBaseURL(srv.URL), platform.WithRetryInterval(time.Millisecond))

	_, err := client.GetContent(context.Background(), "do_missing")
	gt.Error(t, err)
	gt.Number(t, attempts.Load()).Equal(1)
}

func TestDownloadArtifact(t *testing.T) {
	var requestedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, "scorm zip bytes")
	}))
	defer srv.Close()

	client := platform.NewClient(
		platform.WithBaseURL(srv.URL),
		platform.WithRetryInterval(time.Millisecond),
		platform.WithStorageRewrite(srv.URL+"/bucket", srv.URL+"/content-store"),
	)

	dest := filepath.Join(t.TempDir(), "course", "module", "module.zip")
	err := client.DownloadArtifact(context.Background(), srv.URL+"/bucket/artifacts/module.zip", dest)
	gt.NoError(t, err)

	// Bucket URLs are rewritten onto the content store endpoint.
	gt.Value(t, requestedPath).Equal("/content-store/artifacts/module.zip")

	data, err := os.ReadFile(dest)
	gt.NoError(t, err)
	gt.Value(t, string(data)).Equal("scorm zip bytes")
}

func TestDownloadArtifact_RetriesTransientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "artifact")
	}))
	defer srv.Close()

	client := platform.NewClient(platform.WithBaseURL(srv.URL), platform.WithRetryInterval(time.Millisecond))

	dest := filepath.Join(t.TempDir(), "module.zip")
	err := client.DownloadArtifact(context.Background(), srv.URL+"/artifact.zip", dest)
	gt.NoError(t, err)
	gt.Number(t, attempts.Load()).Equal(2)

	data, err := os.ReadFile(dest)
	gt.NoError(t, err)
	gt.Value(t, string(data)).Equal("artifact")
}
