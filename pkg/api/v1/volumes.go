package apiv1

import (
	"net/http"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/repository"
	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/JBibu/zerobyte/pkg/volume"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type VolumesGroup struct {
	routerGroup  *echo.Group
	repo         repository.VolumeRepository
	orchestrator *volume.Orchestrator
}

func NewVolumesGroup(g *echo.Group, repo repository.VolumeRepository, orchestrator *volume.Orchestrator) *VolumesGroup {
	group := &VolumesGroup{routerGroup: g, repo: repo, orchestrator: orchestrator}

	g.GET("", group.ListVolumes)
	g.POST("", group.CreateVolume)
	g.GET("/:volume_id", group.GetVolume)
	g.PUT("/:volume_id", group.UpdateVolume)
	g.DELETE("/:volume_id", group.DeleteVolume)

	g.POST("/:volume_id/mount", group.MountVolume)
	g.POST("/:volume_id/unmount", group.UnmountVolume)
	g.POST("/:volume_id/probe", group.ProbeVolume)

	return group
}

type CreateVolumeRequest struct {
	Name   string             `json:"name"`
	Config types.VolumeConfig `json:"config"`
}

type VolumeResponse struct {
	*types.Volume
	State volume.StateInfo `json:"state"`
}

func (v *VolumesGroup) ListVolumes(c echo.Context) error {
	volumes, err := v.repo.ListVolumes(c.Request().Context())
	if err != nil {
		return HTTPInternalServerError("failed to list volumes")
	}

	response := make([]VolumeResponse, 0, len(volumes))
	for _, vol := range volumes {
		response = append(response, VolumeResponse{Volume: vol, State: v.orchestrator.State(vol)})
	}
	return SuccessResponse(c, response)
}

func (v *VolumesGroup) CreateVolume(c echo.Context) error {
	var req CreateVolumeRequest
	if err := c.Bind(&req); err != nil {
		return HTTPBadRequest("invalid request body")
	}

	if req.Name == "" {
		req.Name = common.GenerateVolumeName()
	}
	if !common.ValidVolumeName(req.Name) {
		return HTTPBadRequest("invalid volume name")
	}
	if !req.Config.Valid() {
		return HTTPBadRequest("volume config must set exactly one backend")
	}

	vol, err := v.repo.CreateVolume(c.Request().Context(), req.Name, req.Config)
	if err != nil {
		log.Error().Err(err).Msg("failed to create volume")
		return HTTPInternalServerError("failed to create volume")
	}

	return SuccessResponse(c, VolumeResponse{Volume: vol, State: v.orchestrator.State(vol)})
}

func (v *VolumesGroup) GetVolume(c echo.Context) error {
	vol, err := v.lookup(c)
	if err != nil {
		return err
	}
	return SuccessResponse(c, VolumeResponse{Volume: vol, State: v.orchestrator.State(vol)})
}

func (v *VolumesGroup) UpdateVolume(c echo.Context) error {
	var req CreateVolumeRequest
	if err := c.Bind(&req); err != nil {
		return HTTPBadRequest("invalid request body")
	}
	if !req.Config.Valid() {
		return HTTPBadRequest("volume config must set exactly one backend")
	}

	vol, err := v.lookup(c)
	if err != nil {
		return err
	}

	// Release under the old config before swapping it out; a mounted share
	// with a replaced config would otherwise be orphaned.
	if result := v.orchestrator.Release(c.Request().Context(), vol); result.Failed() {
		log.Warn().Str("volume", vol.Name).Str("error", result.Error).Msg("release before update failed")
	}

	updated, err := v.repo.UpdateVolumeConfig(c.Request().Context(), vol.ExternalId, req.Config)
	if err != nil {
		return HTTPInternalServerError("failed to update volume")
	}

	return SuccessResponse(c, VolumeResponse{Volume: updated, State: v.orchestrator.State(updated)})
}

func (v *VolumesGroup) DeleteVolume(c echo.Context) error {
	vol, err := v.lookup(c)
	if err != nil {
		return err
	}

	if result := v.orchestrator.Release(c.Request().Context(), vol); result.Failed() {
		return ErrorResponse(c, http.StatusConflict, "volume is mounted and could not be released: "+result.Error)
	}

	if err := v.repo.DeleteVolume(c.Request().Context(), vol.ExternalId); err != nil {
		return HTTPInternalServerError("failed to delete volume")
	}

	v.orchestrator.Evict(vol)
	return SuccessResponse(c, nil)
}

func (v *VolumesGroup) MountVolume(c echo.Context) error {
	vol, err := v.lookup(c)
	if err != nil {
		return err
	}
	return v.operationResponse(c, v.orchestrator.EnsureMounted(c.Request().Context(), vol))
}

func (v *VolumesGroup) UnmountVolume(c echo.Context) error {
	vol, err := v.lookup(c)
	if err != nil {
		return err
	}
	return v.operationResponse(c, v.orchestrator.Release(c.Request().Context(), vol))
}

func (v *VolumesGroup) ProbeVolume(c echo.Context) error {
	vol, err := v.lookup(c)
	if err != nil {
		return err
	}
	return v.operationResponse(c, v.orchestrator.Probe(c.Request().Context(), vol))
}

func (v *VolumesGroup) lookup(c echo.Context) (*types.Volume, error) {
	externalId := c.Param("volume_id")

	vol, err := v.repo.GetVolumeByExternalId(c.Request().Context(), externalId)
	if err != nil {
		if (&types.ErrVolumeNotFound{}).From(err) {
			return nil, HTTPNotFound()
		}
		return nil, HTTPInternalServerError("failed to load volume")
	}
	return vol, nil
}

// operationResponse maps an OperationResult to an HTTP response. Busy maps
// to 409 so callers can retry; other failures are reported with the result
// itself, which is the contract's only failure channel.
func (v *VolumesGroup) operationResponse(c echo.Context, result types.OperationResult) error {
	if result.Kind == types.ErrKindBusy {
		return c.JSON(http.StatusConflict, result)
	}
	return c.JSON(http.StatusOK, result)
}
