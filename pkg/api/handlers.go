package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allthingstrust/truststack/pkg/orchestrator"
	"github.com/allthingstrust/truststack/pkg/store"
)

// createRunHandler handles POST /api/v1/runs: runs the full collect-and-score
// lifecycle synchronously and returns the finished report. The WebSocket hub
// is notified at each lifecycle edge so connected clients see progress
// without polling.
func (s *Server) createRunHandler(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.metrics.RunsStarted.Inc()
	s.hub.Broadcast("run_started", req.BrandSlug, req.ScenarioSlug, nil)

	report, err := s.orc.RunAnalysis(c.Request.Context(), req.BrandSlug, req.ScenarioSlug, req.toOrchestratorConfig())
	if report != nil {
		s.hub.Broadcast("run_finished", req.BrandSlug, req.ScenarioSlug, map[string]any{
			"run_id": report.Run.ExternalID,
			"status": string(report.Run.Status),
		})
	}
	if err != nil {
		s.metrics.RunsFailed.Inc()
		if report == nil {
			writeError(c, err)
			return
		}
		// Partial report: the run failed but produced assets/scores worth
		// returning, matching orchestrator.fail's contract.
		c.JSON(http.StatusOK, ReportResponse{Report: report})
		return
	}
	s.metrics.RunsCompleted.Inc()
	c.JSON(http.StatusCreated, ReportResponse{Report: report})
}

// getRunHandler handles GET /api/v1/runs/:id: the run's lifecycle record
// without assets/scores, for lightweight status polling.
func (s *Server) getRunHandler(c *gin.Context) {
	run, err := s.db.Runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "run not found"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, RunResponse{RunID: run.ExternalID, Status: string(run.Status)})
}

// getReportHandler handles GET /api/v1/runs/:id/report: the full report
// re-assembled from persisted assets, scores and the run summary.
func (s *Server) getReportHandler(c *gin.Context) {
	ctx := c.Request.Context()
	run, err := s.db.Runs.GetRun(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "run not found"})
			return
		}
		writeError(c, err)
		return
	}

	assets, err := s.db.Assets.AssetsForRun(ctx, run.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	assetIDs := make([]string, len(assets))
	for i := range assets {
		assetIDs[i] = assets[i].ID
	}
	scores, err := s.db.Assets.ScoresForAssets(ctx, assetIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	summary, err := s.db.Summaries.SummaryForRun(ctx, run.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	report := orchestrator.RebuildReport(run, assets, scores, summary)
	c.JSON(http.StatusOK, ReportResponse{Report: report})
}
