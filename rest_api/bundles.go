package rest_api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nuibits/userbase"
)

// LockResult carries the lock ID handed to the winner of a lock acquisition.
type LockResult struct {
	LockID string `json:"lock_id"`
}

// lockIDHeader carries the bundle lock ID on upload and release requests.
const lockIDHeader = "X-Bundle-Lock-Id"

func parseSeq(c *gin.Context) (int64, bool) {
	seq, err := strconv.ParseInt(c.Param("seq"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("bundle sequence number %q is not a number", c.Param("seq"))})
		return 0, false
	}
	return seq, true
}

func parseLockID(c *gin.Context) (userbase.UUID, bool) {
	lockID, err := userbase.ParseUUID(c.GetHeader(lockIDHeader))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("header %s does not carry a lock ID", lockIDHeader)})
		return userbase.NilUUID, false
	}
	return lockID, true
}

// GetBundle godoc
// @Summary GetBundle streams the user's bundle at a given sequence number.
// @Schemes
// @Description GetBundle responds with the bundle blob, forwarding its content length and MIME type.
// @Tags Bundles
// @Accept json
// @Produce octet-stream
// @Param userid path string true "ID of the bundle's user" minlength(1) maxlength(150)
// @Param seq path int true "Bundle sequence number" minimum(1)
// @Failure 404 {object} map[string]any
// @Success 200 {file} binary
// @Router /users/{userid}/bundles/{seq} [get]
// @Security Bearer
func GetBundle(c *gin.Context) {
	userID := c.Param("userid")
	seq, ok := parseSeq(c)
	if !ok {
		return
	}

	obj, err := service.QueryDbState(c, userID, seq)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"message": err.Error()})
		return
	}
	defer obj.Body.Close()
	c.DataFromReader(http.StatusOK, obj.ContentLength, obj.ContentType, obj.Body, nil)
}

// PostBundle godoc
// @Summary PostBundle uploads the user's bundle at a given sequence number.
// @Schemes
// @Description PostBundle streams the request body into the bundle store and advances the user's bundle sequence number. The caller must hold the user's bundle lock, passed in the X-Bundle-Lock-Id header; the lock is released whatever the outcome.
// @Tags Bundles
// @Accept octet-stream
// @Produce json
// @Param userid path string true "ID of the bundle's user" minlength(1) maxlength(150)
// @Param seq path int true "Bundle sequence number, must exceed the current one" minimum(1)
// @Param X-Bundle-Lock-Id header string true "Lock ID returned by the bundle lock acquisition"
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Success 200 {object} map[string]any
// @Router /users/{userid}/bundles/{seq} [post]
// @Security Bearer
func PostBundle(c *gin.Context) {
	userID := c.Param("userid")
	seq, ok := parseSeq(c)
	if !ok {
		return
	}
	lockID, ok := parseLockID(c)
	if !ok {
		return
	}

	err := service.UploadBundle(c, userID, seq, lockID, c.ContentType(), c.Request.Body)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("bundle %d of user %s uploaded", seq, userID)})
}

// PostBundleLock godoc
// @Summary PostBundleLock acquires the user's bundle lock.
// @Schemes
// @Description PostBundleLock attempts to take the user's advisory bundle lock and responds with the lock ID on success. The lock expires on its own after the lease duration.
// @Tags Bundles
// @Accept json
// @Produce json
// @Param userid path string true "ID of the lock's user" minlength(1) maxlength(150)
// @Failure 409 {object} map[string]any
// @Success 200 {object} LockResult
// @Router /users/{userid}/bundlelock [post]
// @Security Bearer
func PostBundleLock(c *gin.Context) {
	userID := c.Param("userid")

	lockID, ok, err := service.AcquireBundleLock(c, userID)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"message": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("bundle lock of user %s is held elsewhere", userID)})
		return
	}
	c.JSON(http.StatusOK, LockResult{LockID: lockID.String()})
}

// DeleteBundleLock godoc
// @Summary DeleteBundleLock releases the user's bundle lock.
// @Schemes
// @Description DeleteBundleLock releases the user's bundle lock if the lock ID in the X-Bundle-Lock-Id header owns it.
// @Tags Bundles
// @Accept json
// @Produce json
// @Param userid path string true "ID of the lock's user" minlength(1) maxlength(150)
// @Param X-Bundle-Lock-Id header string true "Lock ID returned by the bundle lock acquisition"
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Success 200 {object} map[string]any
// @Router /users/{userid}/bundlelock [delete]
// @Security Bearer
func DeleteBundleLock(c *gin.Context) {
	userID := c.Param("userid")
	lockID, ok := parseLockID(c)
	if !ok {
		return
	}

	released, err := service.ReleaseBundleLock(c, userID, lockID)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"message": err.Error()})
		return
	}
	if !released {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("no bundle lock of user %s held under that lock ID", userID)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("bundle lock of user %s released", userID)})
}
