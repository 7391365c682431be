package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bootstrap-engine/internal/bootstrap"
)

func NewRouter(eng bootstrap.Engine) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/bootstrap", startJob(eng))
		v1.GET("/jobs", listJobs(eng))
		v1.GET("/jobs/:id", getJob(eng))
		v1.DELETE("/jobs/:id", stopJob(eng))
	}

	RegisterJobWS(r, eng)

	return r
}
