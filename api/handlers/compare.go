package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchcompare/db/kvdb"
	"github.com/meghashyamc/searchcompare/logger"
	"github.com/meghashyamc/searchcompare/metrics"
	"github.com/meghashyamc/searchcompare/services/compare"
	"github.com/meghashyamc/searchcompare/services/present"
)

type CompareRequest struct {
	Query string `json:"query"`
}

// Comparer runs one parallel-versus-sequential comparison.
type Comparer interface {
	Run(ctx context.Context, query string) (*compare.Comparison, error)
}

type ReportStore interface {
	Save(report present.Report) error
	Get(id string) (*present.Report, error)
}

func SetupCompare(router *gin.Engine, logger logger.Logger, comparer Comparer, reports ReportStore) {
	router.POST("/compare", handleCompare(comparer, reports, logger))
	router.GET("/compare/:id", handleGetComparison(reports, logger))
}

func handleCompare(comparer Comparer, reports ReportStore, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := CompareRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from compare request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		comparison, err := comparer.Run(c.Request.Context(), request.Query)
		if err != nil {
			if errors.Is(err, compare.ErrEmptyQuery) {
				c.Abort()
				writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
				return
			}
			logger.Error("comparison failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		report := present.BuildReport(comparison)
		if report.Speedup != nil {
			metrics.LastSpeedup.Set(report.Speedup.Ratio)
		}

		// The report is still returned if it could not be stored.
		if err := reports.Save(report); err != nil {
			logger.Warn("could not store comparison report", "comparison_id", report.ID, "err", err.Error())
		}

		writeResponse(c, report, http.StatusOK, nil)
	}
}

func handleGetComparison(reports ReportStore, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		report, err := reports.Get(id)
		if err != nil {
			if errors.Is(err, kvdb.ErrNotFound) {
				c.Abort()
				writeResponse(c, nil, http.StatusNotFound, []string{"comparison not found"})
				return
			}
			logger.Error("could not read comparison report", "comparison_id", id, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, report, http.StatusOK, nil)
	}
}
