package sets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/strengthlab/liftstats/internal/telemetry/metrics"
	"github.com/strengthlab/liftstats/internal/telemetry/tracing"
	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=sets_mocks_test.go -package=sets_test

type setsRepo interface {
	Add(ctx context.Context, set training.LoggedSet) (*training.LoggedSet, error)
	Get(ctx context.Context, id int) (*training.LoggedSet, error)
	List(ctx context.Context, params ListParams) (_ []training.LoggedSet, total int, err error)
	ListAll(ctx context.Context, params SetParams) (_ []training.LoggedSet, err error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context, params SetParams) (int, error)
}

type AddSetResponse struct {
	training.LoggedSet
	CountToday int `json:"countToday"`
}

type DeleteSetResponse struct {
	DeletedID int `json:"deletedId"`
}

type ListResponse struct {
	Sets  []training.LoggedSet `json:"sets"`
	Total int                  `json:"total"`
}

type Handler struct {
	repo    setsRepo
	metrics *metrics.Manager
}

func NewHandler(repo setsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var set training.LoggedSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		log.Tracef("new set, unmarshal json params: %s", err)
		http.Error(w, "add set failed", http.StatusBadRequest)
		return
	}

	if _, err := training.ParseLift(string(set.Lift)); err != nil {
		http.Error(w, "error, invalid lift", http.StatusBadRequest)
		return
	}
	if set.Weight < 0 || set.Reps < 0 {
		http.Error(w, "error, negative weight or reps", http.StatusBadRequest)
		return
	}
	if set.RPE != nil && (*set.RPE < 0 || *set.RPE > 10) {
		http.Error(w, "error, rpe out of range", http.StatusBadRequest)
		return
	}

	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now()
	}

	addedSet, err := handler.repo.Add(ctx, set)
	if err != nil {
		if errors.Is(err, ErrSetExists) {
			log.Debugf("set already logged [%s], rejecting retry", set.Lift)
			http.Error(w, "error, set already logged", http.StatusConflict)
			return
		}
		log.Errorf("failed to add new set [%s]: %s", set.Lift, err)
		http.Error(w, "error, failed to add new set", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterLoggedSets.Inc()

	todayMidnight := time.Now().Truncate(24 * time.Hour)
	tomorrowMidnight := todayMidnight.Add(24 * time.Hour)
	setsToday, err := handler.repo.ListAll(ctx, SetParams{
		Lift:               addedSet.Lift,
		From:               &todayMidnight,
		To:                 &tomorrowMidnight,
		OnlyProd:           true,
		ExcludeTestingData: true,
	})
	if err != nil {
		// just log the error, no need to return error to the client
		log.Errorf("failed to get sets today [%s]: %s", addedSet.Lift, err)
	}

	addSetResponse := AddSetResponse{
		LoggedSet:  *addedSet,
		CountToday: len(setsToday),
	}

	addedSetJson, err := json.Marshal(addSetResponse)
	if err != nil {
		log.Errorf("failed to marshal new set: %s", err)
		http.Error(w, "error, failed to add new set", http.StatusInternalServerError)
		return
	}

	log.Debugf("new set added: %s", addedSetJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedSetJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.get")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	s, err := handler.repo.Get(ctx, id)
	if err != nil {
		log.Errorf("failed to get set %d: %s", id, err)
		http.Error(w, "set not found", http.StatusBadRequest)
		return
	}

	setJson, err := json.Marshal(s)
	if err != nil {
		log.Errorf("failed to marshal set: %s", err)
		http.Error(w, "failed to marshal set", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, setJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.list")
	defer span.End()

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		log.Tracef("handle list sets, from <page> param: %s", err)
		http.Error(w, "parse form error, parameter <page>", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		log.Tracef("handle list sets, from <size> param: %s", err)
		http.Error(w, "parse form error, parameter <size>", http.StatusBadRequest)
		return
	}

	if page < 1 {
		http.Error(w, "invalid page (has to be non-zero value)", http.StatusBadRequest)
		return
	}
	if size < 1 {
		http.Error(w, "invalid size (has to be non-zero value)", http.StatusBadRequest)
		return
	}

	var lift training.Lift
	if liftStr := r.URL.Query().Get("lift"); liftStr != "" {
		lift, err = training.ParseLift(liftStr)
		if err != nil {
			http.Error(w, "error, invalid lift", http.StatusBadRequest)
			return
		}
	}

	onlyProd := r.URL.Query().Get("only_prod") == "true"
	excludeTestingData := r.URL.Query().Get("exclude_testing_data") == "true"

	listParams := ListParams{
		SetParams: SetParams{
			Lift:               lift,
			OnlyProd:           onlyProd,
			ExcludeTestingData: excludeTestingData,
		},
		Page: page,
		Size: size,
	}

	loggedSets, total, err := handler.repo.List(ctx, listParams)
	if err != nil {
		log.Errorf("list sets error: %s", err)
		http.Error(w, "failed to get sets", http.StatusInternalServerError)
		return
	}

	listResponseJson, err := json.Marshal(ListResponse{
		Sets:  loggedSets,
		Total: total,
	})
	if err != nil {
		log.Errorf("marshal sets error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listResponseJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.delete")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	set, err := handler.repo.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrSetNotFound) {
		log.Errorf("failed to get set %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	} else if errors.Is(err, ErrSetNotFound) {
		log.Debugf("set %d not found", id)
		http.Error(w, "set not found", http.StatusNotFound)
		return
	}

	log.Debugf("deleting set %+v", set)

	if err := handler.repo.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete set %d: %s", id, err)
		http.Error(w, "set not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteSetResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}
