package monitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/gin-gonic/gin"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/klog/v2"

	"gensetgateway/pkg/apis"
	"gensetgateway/pkg/apis/response"
	generatorruntime "gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/runtime"
	v1 "gensetgateway/pkg/v1"
)

func InstallHandler(group *gin.RouterGroup, mgr *Manager) {
	group.POST("/generator/profile", createProfile(mgr))
	group.GET("/generator/profile", getProfile(mgr))
	group.PUT("/generator/profile", updateProfile(mgr))
	group.PATCH("/generator/profile", patchProfile(mgr))
	group.DELETE("/generator/profile", deleteProfile(mgr))
	group.GET("/generator/status", getStatus(mgr))
	group.GET("/generator/config", getEffectiveConfig(mgr))
	group.PUT("/generator/monitor/:status", switchMonitor(mgr))
	group.PUT("/generator/control", controlGenerator(mgr))
	group.POST("/generator/connection/test", testConnection(mgr))
	group.GET("/generator/history", getHistory(mgr))
}

func createProfile(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var object v1.GeneratorProfile
		if err := c.ShouldBindJSON(&object); err != nil {
			klog.V(2).InfoS("Failed to parse generator profile", "err", err)
			c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrMalformedJSON))
			return
		}
		profile, err := mgr.CreateProfile(&object)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.NewMultiError(err))
			return
		}

		c.Header(apis.ETag, fmt.Sprintf("%s", profile.GetVersion()))
		c.Header(apis.Location, fmt.Sprintf("https://%s%s", c.Request.Host, c.Request.RequestURI))
		c.JSON(http.StatusCreated, profile)
	}
}

func getProfile(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		profile, err := mgr.GetProfile()
		if err != nil {
			if os.IsNotExist(err) {
				c.Status(http.StatusNotFound)
			} else {
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		c.Header(apis.ETag, fmt.Sprintf("%s", profile.GetVersion()))
		c.JSON(http.StatusOK, profile)
	}
}

func updateProfile(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		eTag := c.GetHeader(apis.IfMatch)
		if len(eTag) == 0 {
			c.Status(http.StatusPreconditionRequired)
			return
		}

		var object v1.GeneratorProfile
		if err := c.ShouldBindJSON(&object); err != nil {
			klog.V(3).InfoS("Failed to decode", "err", err)
			c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrMalformedJSON))
			return
		}

		updated, err := mgr.UpdateProfile(eTag, &object)
		if err != nil {
			switch {
			case os.IsNotExist(err):
				c.Status(http.StatusNotFound)
			case errors.Is(err, apis.ErrMismatch):
				c.Status(http.StatusPreconditionFailed)
			default:
				if response.IsResponseError(err) {
					c.JSON(http.StatusBadRequest, response.NewMultiError(err))
				} else {
					c.Status(http.StatusInternalServerError)
				}
			}
			return
		}

		c.Header(apis.ETag, updated.GetVersion())
		c.JSON(http.StatusOK, updated)
	}
}

func patchProfile(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		contentType := c.GetHeader("Content-Type")
		// Remove "; charset=" if included in header.
		if idx := strings.Index(contentType, ";"); idx > 0 {
			contentType = contentType[:idx]
		}

		if !patchTypes.Has(contentType) {
			c.Status(http.StatusUnsupportedMediaType)
			return
		}

		eTag := c.GetHeader(apis.IfMatch)
		if len(eTag) == 0 {
			c.Status(http.StatusPreconditionRequired)
			return
		}

		patchBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			klog.V(3).InfoS("Failed to read", "err", err)
			c.Status(http.StatusInternalServerError)
			return
		}

		old, err := mgr.GetProfile()
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}

		versionedJS, err := json.Marshal(old)
		if err != nil {
			klog.V(3).InfoS("Failed to marshal", "err", err)
			c.Status(http.StatusInternalServerError)
			return
		}

		patchedJS, err := applyJSPatch(types.PatchType(contentType), patchBytes, versionedJS)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.NewMultiError(err))
			return
		}

		var newObj v1.GeneratorProfile
		if err := json.NewDecoder(bytes.NewBuffer(patchedJS)).Decode(&newObj); err != nil {
			klog.V(3).InfoS("Failed to decode", "err", err)
			c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrMalformedJSON))
			return
		}

		updated, err := mgr.UpdateProfile(eTag, &newObj)
		if err != nil {
			switch {
			case os.IsNotExist(err):
				c.Status(http.StatusNotFound)
			case errors.Is(err, apis.ErrMismatch):
				c.Status(http.StatusPreconditionFailed)
			default:
				if response.IsResponseError(err) {
					c.JSON(http.StatusBadRequest, response.NewMultiError(err))
				} else {
					c.Status(http.StatusInternalServerError)
				}
			}
			return
		}

		c.Header(apis.ETag, updated.GetVersion())
		c.JSON(http.StatusOK, updated)
	}
}

func deleteProfile(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		eTag := c.GetHeader(apis.IfMatch)
		if len(eTag) == 0 {
			c.Status(http.StatusPreconditionRequired)
			return
		}
		profile, err := mgr.DeleteProfile(eTag)
		if err != nil {
			if os.IsNotExist(err) {
				c.Status(http.StatusNotFound)
			} else if errors.Is(err, apis.ErrMismatch) {
				c.Status(http.StatusPreconditionFailed)
			} else {
				c.JSON(http.StatusBadRequest, response.NewMultiError(err))
			}
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func getStatus(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		status, err := mgr.Status()
		if err != nil {
			if os.IsNotExist(err) {
				c.Status(http.StatusNotFound)
				return
			}
			var configuration *generatorruntime.ConfigurationError
			if errors.As(err, &configuration) {
				c.JSON(http.StatusConflict, response.NewMultiError(response.ErrControllerUnreachable(err)))
				return
			}
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

func getEffectiveConfig(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		config, err := mgr.EffectiveConfig()
		if err != nil {
			if os.IsNotExist(err) {
				c.Status(http.StatusNotFound)
			} else {
				c.JSON(http.StatusBadRequest, response.NewMultiError(err))
			}
			return
		}
		c.JSON(http.StatusOK, config)
	}
}

func switchMonitor(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		status := c.Param("status")
		if err := mgr.SwitchMonitor(status); err != nil {
			if os.IsNotExist(err) {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusBadRequest, response.NewMultiError(err))
			return
		}
		c.Status(http.StatusAccepted)
	}
}

func controlGenerator(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		var command v1.ControlCommand
		if err := c.ShouldBindJSON(&command); err != nil {
			klog.V(3).InfoS("Failed to parse control command", "err", err)
			c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrMalformedJSON))
			return
		}

		if err := mgr.Control(c.Request.Context(), command.Command); err != nil {
			if os.IsNotExist(err) {
				c.Status(http.StatusNotFound)
				return
			}
			if response.IsResponseError(err) {
				c.JSON(http.StatusConflict, response.NewMultiError(err))
				return
			}
			c.JSON(http.StatusBadRequest, response.NewMultiError(err))
			return
		}

		c.Status(http.StatusAccepted)
	}
}

func testConnection(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		result, err := mgr.TestConnection(c.Request.Context())
		if err != nil {
			if os.IsNotExist(err) {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusBadRequest, response.NewMultiError(err))
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getHistory(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		query := c.Request.URL.Query()
		end := time.Now()
		start := end.Add(-defaultHistoryHours * time.Hour)
		if v := query.Get("hours"); len(v) > 0 {
			hours, err := strconv.ParseFloat(v, 64)
			if err != nil || hours <= 0 {
				c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrRequestBody))
				return
			}
			start = end.Add(-time.Duration(hours * float64(time.Hour)))
		}
		if v := query.Get(apis.Start); len(v) > 0 {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrRequestBody))
				return
			}
			start = t
		}
		if v := query.Get(apis.End); len(v) > 0 {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrRequestBody))
				return
			}
			end = t
		}

		limit := 0
		if v := query.Get(apis.Limit); len(v) > 0 {
			limit, _ = strconv.Atoi(v)
		}

		var filter *runtime.MetricFilter
		if v := query.Get(apis.Filter); len(v) > 0 {
			filter = &runtime.MetricFilter{}
			if err := json.Unmarshal([]byte(v), filter); err != nil {
				c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrMalformedJSON))
				return
			}
		}

		history, err := mgr.History(c.Request.Context(), start, end, limit, filter)
		if err != nil {
			if os.IsNotExist(err) {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusBadRequest, response.NewMultiError(err))
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

func applyJSPatch(patchType types.PatchType, patchBytes, versionedJS []byte) (patchedJS []byte, err error) {
	switch patchType {
	case types.JSONPatchType:
		patchObj, err := jsonpatch.DecodePatch(patchBytes)
		if err != nil {
			return nil, response.ErrMalformedJSON
		}
		if len(patchObj) > maxJSONPatchOperations {
			klog.V(3).InfoS("Too many json patch operations", "count", len(patchObj))
			return nil, response.ErrTooManyJsonPatchOperations(maxJSONPatchOperations)
		}
		patchedJS, err := patchObj.Apply(versionedJS)
		if err != nil {
			klog.V(3).InfoS("Failed to apply json patch", "err", err)
			return nil, response.ErrMalformedJSON
		}
		return patchedJS, nil
	case types.MergePatchType:
		patchedJS, err = jsonpatch.MergePatch(versionedJS, patchBytes)
		if err != nil {
			klog.V(3).InfoS("Failed to apply json merge patch", "err", err)
			return nil, response.ErrMalformedJSON
		}
		return patchedJS, err
	default:
		// only here as a safety net - gin filters content-type
		return nil, fmt.Errorf("unknown Content-Type header for patch: %v", patchType)
	}
}
