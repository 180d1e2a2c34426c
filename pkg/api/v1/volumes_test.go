package apiv1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JBibu/zerobyte/pkg/repository"
	"github.com/JBibu/zerobyte/pkg/secrets"
	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/JBibu/zerobyte/pkg/volume"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	echo *echo.Echo
	repo repository.VolumeRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	repo := repository.NewVolumeRepositoryForTest()
	orchestrator := volume.NewOrchestrator(volume.Config{
		MountBase: t.TempDir(),
		Platform:  volume.PosixPlatform{},
		Runner:    nil, // directory volumes never run commands
		Secrets:   secrets.StaticResolver{},
		Mounts:    nil,
		Caps:      volume.Capabilities{},
	})

	e := echo.New()
	NewVolumesGroup(e.Group("/api/v1/volumes"), repo, orchestrator)

	return &apiFixture{echo: e, repo: repo}
}

func (f *apiFixture) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	var out T
	require.NoError(t, json.Unmarshal(envelope.Data, &out))
	return out
}

func TestCreateAndListVolumes(t *testing.T) {
	f := newAPIFixture(t)
	dir := t.TempDir()

	rec := f.request(t, http.MethodPost, "/api/v1/volumes", CreateVolumeRequest{
		Name: "docs",
		Config: types.VolumeConfig{
			Backend:   types.BackendDirectory,
			Directory: &types.DirectoryConfig{Path: dir},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	created := decodeData[VolumeResponse](t, rec)
	assert.Equal(t, "docs", created.Name)
	assert.NotEmpty(t, created.ExternalId)
	assert.Equal(t, types.StateUnmounted, created.State.State)

	rec = f.request(t, http.MethodGet, "/api/v1/volumes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeData[[]VolumeResponse](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ExternalId, listed[0].ExternalId)
}

func TestCreateVolumeValidation(t *testing.T) {
	f := newAPIFixture(t)

	// Config must set exactly one backend.
	rec := f.request(t, http.MethodPost, "/api/v1/volumes", CreateVolumeRequest{
		Name:   "broken",
		Config: types.VolumeConfig{Backend: types.BackendSmb},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/v1/volumes", CreateVolumeRequest{
		Name: "bad name!",
		Config: types.VolumeConfig{
			Backend:   types.BackendDirectory,
			Directory: &types.DirectoryConfig{Path: "/tmp"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMountUnmountVolume(t *testing.T) {
	f := newAPIFixture(t)
	dir := t.TempDir()

	rec := f.request(t, http.MethodPost, "/api/v1/volumes", CreateVolumeRequest{
		Name: "docs",
		Config: types.VolumeConfig{
			Backend:   types.BackendDirectory,
			Directory: &types.DirectoryConfig{Path: dir},
		},
	})
	created := decodeData[VolumeResponse](t, rec)

	rec = f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/volumes/%s/mount", created.ExternalId), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.OperationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, types.StatusMounted, result.Status)

	rec = f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/volumes/%s/unmount", created.ExternalId), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, types.StatusUnmounted, result.Status)
}

func TestVolumeNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.request(t, http.MethodGet, "/api/v1/volumes/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/v1/volumes/missing/mount", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteVolume(t *testing.T) {
	f := newAPIFixture(t)
	dir := t.TempDir()

	rec := f.request(t, http.MethodPost, "/api/v1/volumes", CreateVolumeRequest{
		Name: "docs",
		Config: types.VolumeConfig{
			Backend:   types.BackendDirectory,
			Directory: &types.DirectoryConfig{Path: dir},
		},
	})
	created := decodeData[VolumeResponse](t, rec)

	rec = f.request(t, http.MethodDelete, "/api/v1/volumes/"+created.ExternalId, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/v1/volumes/"+created.ExternalId, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
