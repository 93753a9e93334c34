package history

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/coocood/freecache"

	"github.com/strengthlab/liftstats/internal/telemetry/metrics"
	"github.com/strengthlab/liftstats/internal/telemetry/tracing"
	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/scoring"
	"github.com/strengthlab/liftstats/internal/training/sets"
	"github.com/strengthlab/liftstats/pkg"
)

const (
	// analysis walks the full set history, cache the response briefly
	analysisCacheSize          = 1024 * 1024
	analysisCacheExpireSeconds = 60
)

type Handler struct {
	analyzer *Analyzer
	cache    *freecache.Cache
	metrics  *metrics.Manager
}

func NewHandler(analyzer *Analyzer, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		analyzer: analyzer,
		cache:    freecache.NewCache(analysisCacheSize),
		metrics:  metricsManager,
	}
}

func (handler *Handler) HandlePRs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.history.prs")
	defer span.End()

	var lift training.Lift
	if liftStr := r.URL.Query().Get("lift"); liftStr != "" {
		var err error
		lift, err = training.ParseLift(liftStr)
		if err != nil {
			http.Error(w, "error, invalid lift", http.StatusBadRequest)
			return
		}
	}
	onlyProd := r.URL.Query().Get("only_prod") == "true"
	excludeTestingData := r.URL.Query().Get("exclude_testing_data") == "true"

	cacheKey := fmt.Sprintf("prs::%s::%t::%t", lift, onlyProd, excludeTestingData)
	if cachedBytes, err := handler.cache.Get([]byte(cacheKey)); err == nil {
		log.Tracef("found pr report for [%s] in cache", cacheKey)
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, cachedBytes, http.StatusOK)
		return
	}

	report, err := handler.analyzer.PRs(ctx, sets.SetParams{
		Lift:               lift,
		OnlyProd:           onlyProd,
		ExcludeTestingData: excludeTestingData,
	})
	if err != nil {
		log.Errorf("failed to detect prs: %s", err)
		http.Error(w, "failed to detect prs", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterPersonalRecords.Add(float64(len(report.Records)))

	reportJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("failed to marshal pr report: %s", err)
		http.Error(w, "failed to marshal pr report", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set([]byte(cacheKey), reportJson, analysisCacheExpireSeconds); err != nil {
		log.Errorf("failed to write pr report cache for [%s]: %s", cacheKey, err)
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, reportJson, http.StatusOK)
}

func (handler *Handler) HandleSymmetry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.history.symmetry")
	defer span.End()

	onlyProd := r.URL.Query().Get("only_prod") == "true"
	excludeTestingData := r.URL.Query().Get("exclude_testing_data") == "true"

	cacheKey := fmt.Sprintf("symmetry::%t::%t", onlyProd, excludeTestingData)
	if cachedBytes, err := handler.cache.Get([]byte(cacheKey)); err == nil {
		log.Tracef("found symmetry report for [%s] in cache", cacheKey)
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, cachedBytes, http.StatusOK)
		return
	}

	report, err := handler.analyzer.SymmetryReport(ctx, onlyProd, excludeTestingData)
	if err != nil {
		log.Errorf("failed to get symmetry report: %s", err)
		http.Error(w, "failed to get symmetry report", http.StatusBadRequest)
		return
	}

	reportJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("failed to marshal symmetry report: %s", err)
		http.Error(w, "failed to marshal symmetry report", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set([]byte(cacheKey), reportJson, analysisCacheExpireSeconds); err != nil {
		log.Errorf("failed to write symmetry report cache for [%s]: %s", cacheKey, err)
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, reportJson, http.StatusOK)
}

func (handler *Handler) HandleStandards(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.history.standards")
	defer span.End()

	bodyweight, sex, ok := bodyParams(w, r)
	if !ok {
		return
	}
	onlyProd := r.URL.Query().Get("only_prod") == "true"
	excludeTestingData := r.URL.Query().Get("exclude_testing_data") == "true"

	standards, err := handler.analyzer.Standards(ctx, bodyweight, sex, onlyProd, excludeTestingData)
	if err != nil {
		log.Errorf("failed to get strength standards: %s", err)
		http.Error(w, "failed to get strength standards", http.StatusBadRequest)
		return
	}

	standardsJson, err := json.Marshal(standards)
	if err != nil {
		log.Errorf("failed to marshal strength standards: %s", err)
		http.Error(w, "failed to marshal strength standards", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, standardsJson, http.StatusOK)
}

func (handler *Handler) HandleWilks(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.history.wilks")
	defer span.End()

	bodyweight, sex, ok := bodyParams(w, r)
	if !ok {
		return
	}
	onlyProd := r.URL.Query().Get("only_prod") == "true"
	excludeTestingData := r.URL.Query().Get("exclude_testing_data") == "true"

	wilksResp, err := handler.analyzer.Wilks(ctx, bodyweight, sex, onlyProd, excludeTestingData)
	if err != nil {
		log.Errorf("failed to get wilks score: %s", err)
		http.Error(w, "failed to get wilks score", http.StatusBadRequest)
		return
	}

	wilksJson, err := json.Marshal(wilksResp)
	if err != nil {
		log.Errorf("failed to marshal wilks response: %s", err)
		http.Error(w, "failed to marshal wilks response", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, wilksJson, http.StatusOK)
}

func bodyParams(w http.ResponseWriter, r *http.Request) (bodyweight float64, sex scoring.Sex, ok bool) {
	bodyweightStr := r.URL.Query().Get("bodyweight")
	if bodyweightStr == "" {
		http.Error(w, "error, bodyweight param empty", http.StatusBadRequest)
		return 0, "", false
	}
	bodyweight, err := strconv.ParseFloat(bodyweightStr, 64)
	if err != nil || bodyweight <= 0 {
		http.Error(w, "error, invalid bodyweight param", http.StatusBadRequest)
		return 0, "", false
	}

	sex, err = scoring.ParseSex(r.URL.Query().Get("sex"))
	if err != nil {
		http.Error(w, "error, invalid sex param", http.StatusBadRequest)
		return 0, "", false
	}

	return bodyweight, sex, true
}
