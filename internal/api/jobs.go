package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"bootstrap-engine/internal/bootstrap"
	"bootstrap-engine/internal/job"
)

type bootstrapRequest struct {
	Runtime   string            `json:"runtime" binding:"required"`
	SourceDir string            `json:"source_dir" binding:"required"`
	Env       map[string]string `json:"env"`
}

func startJob(eng bootstrap.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bootstrapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		j, err := eng.StartJob(c.Request.Context(), bootstrap.Request{
			Runtime:   req.Runtime,
			SourceDir: req.SourceDir,
			Env:       req.Env,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, j.Snapshot())
	}
}

func listJobs(eng bootstrap.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		all := eng.Jobs()
		snaps := make([]job.Snapshot, 0, len(all))
		for _, j := range all {
			snaps = append(snaps, j.Snapshot())
		}
		sort.Slice(snaps, func(i, k int) bool {
			if snaps[i].StartedAt.Equal(snaps[k].StartedAt) {
				return snaps[i].ID < snaps[k].ID
			}
			return snaps[i].StartedAt.Before(snaps[k].StartedAt)
		})

		c.JSON(http.StatusOK, gin.H{"jobs": snaps})
	}
}

func getJob(eng bootstrap.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, ok := eng.GetJob(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}

		snap := j.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"job":    snap,
			"stdout": j.Stdout.String(),
			"stderr": j.Stderr.String(),
		})
	}
}

func stopJob(eng bootstrap.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, ok := eng.GetJob(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}

		j.Stop()
		c.JSON(http.StatusOK, j.Snapshot())
	}
}
