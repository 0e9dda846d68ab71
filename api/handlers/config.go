package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchcompare/logger"
	"github.com/meghashyamc/searchcompare/services/searchconfig"
)

// UpdateConfigRequest takes raw values; anything that is not a positive
// integer leaves the current value unchanged.
type UpdateConfigRequest struct {
	Processes any `json:"processes"`
	Threads   any `json:"threads"`
}

type ConfigResponse struct {
	Processes    int `json:"processes"`
	Threads      int `json:"threads"`
	TotalWorkers int `json:"total_workers"`
}

func SetupConfig(router *gin.Engine, logger logger.Logger, state *searchconfig.State, store searchconfig.Store) {
	router.GET("/config", handleGetConfig(state))
	router.PUT("/config", handleUpdateConfig(state, store, logger))
}

func handleGetConfig(state *searchconfig.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeResponse(c, toConfigResponse(state.Snapshot()), http.StatusOK, nil)
	}
}

func handleUpdateConfig(state *searchconfig.State, store searchconfig.Store, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := UpdateConfigRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from config request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		processesAccepted, threadsAccepted := state.Update(request.Processes, request.Threads)
		if !processesAccepted || !threadsAccepted {
			logger.Debug("ignored invalid config input", "processes", request.Processes, "threads", request.Threads)
		}

		if processesAccepted || threadsAccepted {
			if err := state.Persist(store); err != nil {
				logger.Error("could not persist search config", "err", err.Error())
			}
		}

		writeResponse(c, toConfigResponse(state.Snapshot()), http.StatusOK, nil)
	}
}

func toConfigResponse(cfg searchconfig.Config) ConfigResponse {
	return ConfigResponse{
		Processes:    cfg.Processes,
		Threads:      cfg.Threads,
		TotalWorkers: cfg.TotalWorkers(),
	}
}
