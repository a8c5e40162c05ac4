package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sujaykar/echovault/pkg/client"
)

// fakeVault 模拟文件服务与记录 API，记录调用并支持注入失败.
type fakeVault struct {
	mu sync.Mutex

	uploads   int
	registers int
	deletes   int
	lists     int

	failUpload   bool
	failRegister bool

	knownEchoID  string
	progressJSON string

	lastUploadPath   string
	lastUploadUser   string
	lastUploadBody   []byte
	lastUploadType   string
	lastRegisterBody map[string]any
	lastDeletePath   string
}

func newFakeVault() *fakeVault { return &fakeVault{} }

func (f *fakeVault) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload/", f.handleUpload)
	mux.HandleFunc("/api/v1/echoes", f.handleEchoes)
	mux.HandleFunc("/api/v1/echoes/", f.handleEchoByID)

	return mux
}

func (f *fakeVault) handleUpload(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rest := strings.TrimPrefix(r.URL.Path, "/upload/")

	if r.Method == http.MethodGet && strings.HasSuffix(rest, "/progress") {
		if f.progressJSON == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.progressJSON))

		return
	}

	switch r.Method {
	case http.MethodPut:
		f.uploads++
		f.lastUploadPath = r.URL.Path
		f.lastUploadUser = r.Header.Get("X-User-Id")

		if f.failUpload {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		b, _ := io.ReadAll(file)
		f.lastUploadBody = b
		f.lastUploadType = header.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"original_path":"` + rest + `","display_name":"` + rest + `","size":1,"drive_path":"echoes/` + rest + `"}`))
	case http.MethodDelete:
		f.deletes++
		f.lastDeletePath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"echo_id":"` + rest + `","removed":[]}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeVault) handleEchoes(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		f.registers++

		if f.failRegister {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		body, _ := io.ReadAll(r.Body)

		var m map[string]any
		_ = json.Unmarshal(body, &m)
		f.lastRegisterBody = m

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	case http.MethodGet:
		f.lists++

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"echoes":[],"total":0}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeVault) handleEchoByID(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/echoes/")
	id = strings.TrimSuffix(id, "/text")

	if id != f.knownEchoID {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"echo not found"}`))

		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet, http.MethodPatch:
		_, _ = w.Write([]byte(`{"id":"` + id + `","displayName":"My Echo","sourceFilePath":"fileserver/` + id + `","mediaType":"audio/webm","text":"hello"}`))
	case http.MethodDelete:
		_, _ = w.Write([]byte(`{"id":"` + id + `"}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// newTestClient 构造指向 fake 服务的客户端.
func newTestClient(t *testing.T, srvURL string) *client.Client {
	t.Helper()

	c, err := client.New(client.Config{
		FileserverURL: srvURL,
		APIURL:        srvURL,
		UserID:        "tester",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return c
}

// TestConfigValidate 验证基地址缺失时的哨兵错误.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  client.Config
		want error
	}{
		{"missing fileserver url", client.Config{APIURL: "http://a"}, client.ErrMissingFileserverURL},
		{"missing api url", client.Config{FileserverURL: "http://a"}, client.ErrMissingAPIURL},
		{"blank fileserver url", client.Config{FileserverURL: "   ", APIURL: "http://a"}, client.ErrMissingFileserverURL},
		{"both present", client.Config{FileserverURL: "http://a", APIURL: "http://a"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestNewFailsWithoutBaseURL 基地址缺失时 New 直接失败，不发起任何网络请求.
func TestNewFailsWithoutBaseURL(t *testing.T) {
	if _, err := client.New(client.Config{APIURL: "http://example.invalid"}); !errors.Is(err, client.ErrMissingFileserverURL) {
		t.Errorf("New without fileserver url = %v, want ErrMissingFileserverURL", err)
	}

	if _, err := client.New(client.Config{FileserverURL: "http://example.invalid"}); !errors.Is(err, client.ErrMissingAPIURL) {
		t.Errorf("New without api url = %v, want ErrMissingAPIURL", err)
	}
}

// TestSubmitNewArtifact 覆盖两阶段提交的关键字段：
// 上传目标路径、表单字段、登记请求体中的固定值.
func TestSubmitNewArtifact(t *testing.T) {
	fake := newFakeVault()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	echo, err := c.SubmitNewArtifact(context.Background(), "abc", strings.NewReader("payload-bytes"), "audio/webm")
	if err != nil {
		t.Fatalf("SubmitNewArtifact: %v", err)
	}

	if fake.lastUploadPath != "/upload/abc" {
		t.Errorf("upload path = %q, want /upload/abc", fake.lastUploadPath)
	}

	if fake.lastUploadUser != "tester" {
		t.Errorf("upload X-User-Id = %q, want tester", fake.lastUploadUser)
	}

	if string(fake.lastUploadBody) != "payload-bytes" {
		t.Errorf("uploaded body = %q, want payload-bytes", fake.lastUploadBody)
	}

	if fake.lastUploadType != "audio/webm" {
		t.Errorf("uploaded part content type = %q, want audio/webm", fake.lastUploadType)
	}

	want := map[string]any{
		"id":             "abc",
		"displayName":    "My Echo",
		"sourceFilePath": "fileserver/abc",
		"mediaType":      "audio/webm",
		"text":           "",
	}
	for k, v := range want {
		got, ok := fake.lastRegisterBody[k]
		if !ok {
			t.Errorf("register payload missing key %q", k)
			continue
		}

		if got != v {
			t.Errorf("register payload %s = %v, want %v", k, got, v)
		}
	}

	if echo.ID != "abc" || echo.DisplayName != "My Echo" {
		t.Errorf("returned echo = %+v", echo)
	}
}

// TestSubmitNewArtifactUploadRejected 上传被拒时整体失败且不发起登记.
func TestSubmitNewArtifactUploadRejected(t *testing.T) {
	fake := newFakeVault()
	fake.failUpload = true

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.SubmitNewArtifact(context.Background(), "abc", strings.NewReader("x"), "audio/webm")
	if !errors.Is(err, client.ErrUploadRejected) {
		t.Fatalf("SubmitNewArtifact = %v, want ErrUploadRejected", err)
	}

	if fake.registers != 0 {
		t.Errorf("registers = %d, want 0 (no registration after rejected upload)", fake.registers)
	}

	if fake.deletes != 0 {
		t.Errorf("deletes = %d, want 0 (nothing to compensate)", fake.deletes)
	}
}

// TestSubmitNewArtifactCompensatesOnRegisterFailure 登记失败后补偿删除已上传负载.
func TestSubmitNewArtifactCompensatesOnRegisterFailure(t *testing.T) {
	fake := newFakeVault()
	fake.failRegister = true

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.SubmitNewArtifact(context.Background(), "abc", strings.NewReader("x"), "audio/webm")
	if !errors.Is(err, client.ErrRegistrationFailed) {
		t.Fatalf("SubmitNewArtifact = %v, want ErrRegistrationFailed", err)
	}

	if fake.uploads != 1 {
		t.Errorf("uploads = %d, want 1", fake.uploads)
	}

	if fake.deletes != 1 {
		t.Errorf("deletes = %d, want 1 (compensating cleanup)", fake.deletes)
	}

	if fake.lastDeletePath != "/upload/abc" {
		t.Errorf("compensating delete path = %q, want /upload/abc", fake.lastDeletePath)
	}
}

// TestSubmitNewArtifactInvalidatesListCacheOnce 提交成功后 listEchoes 缓存恰好失效一次.
func TestSubmitNewArtifactInvalidatesListCacheOnce(t *testing.T) {
	fake := newFakeVault()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	// 预热缓存
	if _, err := c.ListEchoes(ctx); err != nil {
		t.Fatalf("ListEchoes: %v", err)
	}

	if _, err := c.ListEchoes(ctx); err != nil {
		t.Fatalf("ListEchoes: %v", err)
	}

	if fake.lists != 1 {
		t.Fatalf("lists after warm-up = %d, want 1 (second call served from cache)", fake.lists)
	}

	if _, err := c.SubmitNewArtifact(ctx, "abc", strings.NewReader("x"), "audio/webm"); err != nil {
		t.Fatalf("SubmitNewArtifact: %v", err)
	}

	// 失效后第一次回源，之后再次命中缓存 -- 即恰好失效一次
	if _, err := c.ListEchoes(ctx); err != nil {
		t.Fatalf("ListEchoes: %v", err)
	}

	if fake.lists != 2 {
		t.Errorf("lists after submit = %d, want 2 (cache invalidated)", fake.lists)
	}

	if _, err := c.ListEchoes(ctx); err != nil {
		t.Fatalf("ListEchoes: %v", err)
	}

	if fake.lists != 2 {
		t.Errorf("lists after re-cache = %d, want 2 (cache valid again)", fake.lists)
	}
}

// TestGetEchoNotFound 未知记录返回 ErrNotFound.
func TestGetEchoNotFound(t *testing.T) {
	fake := newFakeVault()
	fake.knownEchoID = "exists"

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	if _, err := c.GetEcho(context.Background(), "nope"); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("GetEcho(nope) = %v, want ErrNotFound", err)
	}

	echo, err := c.GetEcho(context.Background(), "exists")
	if err != nil {
		t.Fatalf("GetEcho(exists): %v", err)
	}

	if echo.Text != "hello" {
		t.Errorf("echo.Text = %q, want hello", echo.Text)
	}
}

// TestDeleteEchoInvalidatesListCache 删除成功后本地列表缓存随之失效.
func TestDeleteEchoInvalidatesListCache(t *testing.T) {
	fake := newFakeVault()
	fake.knownEchoID = "abc"

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	if _, err := c.ListEchoes(ctx); err != nil {
		t.Fatalf("ListEchoes: %v", err)
	}

	if err := c.DeleteEcho(ctx, "abc"); err != nil {
		t.Fatalf("DeleteEcho: %v", err)
	}

	if _, err := c.ListEchoes(ctx); err != nil {
		t.Fatalf("ListEchoes: %v", err)
	}

	if fake.lists != 2 {
		t.Errorf("lists = %d, want 2 (cache invalidated by delete)", fake.lists)
	}

	if err := c.DeleteEcho(ctx, "missing"); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("DeleteEcho(missing) = %v, want ErrNotFound", err)
	}
}

// TestProgress 进行中的上传 total 为 null，未知标识返回 ErrNotFound.
func TestProgress(t *testing.T) {
	fake := newFakeVault()
	fake.progressJSON = `{"received":5,"total":null,"done":false}`

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	p, err := c.Progress(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}

	if p.Received != 5 || p.Total != nil || p.Done {
		t.Errorf("progress = %+v, want received=5 total=nil done=false", p)
	}

	fake.progressJSON = ""

	if _, err := c.Progress(context.Background(), "abc"); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("Progress unknown = %v, want ErrNotFound", err)
	}
}

// TestDownloadEcho 下载返回负载内容与内容类型.
func TestDownloadEcho(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/download/abc", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/webm")
		_, _ = w.Write([]byte("blob"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	body, contentType, err := c.DownloadEcho(context.Background(), "abc")
	if err != nil {
		t.Fatalf("DownloadEcho: %v", err)
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	if string(b) != "blob" {
		t.Errorf("body = %q, want blob", b)
	}

	if contentType != "audio/webm" {
		t.Errorf("content type = %q, want audio/webm", contentType)
	}

	if _, _, err := c.DownloadEcho(context.Background(), "missing"); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("DownloadEcho(missing) = %v, want ErrNotFound", err)
	}
}

// TestNewEchoID 生成的 ULID 长度固定、全局唯一且按时间单调递增.
func TestNewEchoID(t *testing.T) {
	const n = 100

	seen := make(map[string]bool, n)
	prev := ""

	for i := 0; i < n; i++ {
		id := client.NewEchoID()
		if len(id) != 26 {
			t.Fatalf("len(id) = %d, want 26", len(id))
		}

		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}

		seen[id] = true

		if prev != "" && id <= prev {
			t.Fatalf("id %s not greater than previous %s", id, prev)
		}

		prev = id
	}
}
