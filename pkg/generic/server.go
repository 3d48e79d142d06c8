package generic

import "github.com/gin-gonic/gin"

// Server is the shared HTTP surface the gateway mounts its handlers on.
type Server struct {
	Router  *gin.Engine
	Port    string
	Methods []string
}
