package program

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/strengthlab/liftstats/internal/telemetry/tracing"
	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/pkg"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

type ListProgramsResponse struct {
	Programs []Program `json:"programs"`
}

type DeleteProgramResponse struct {
	DeletedID int `json:"deletedId"`
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.create")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var p Program
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		log.Tracef("new program, unmarshal json params: %s", err)
		http.Error(w, "create program failed", http.StatusBadRequest)
		return
	}

	created, err := handler.service.Create(ctx, p)
	if err != nil {
		if errors.Is(err, training.ErrInvalidProgramState) {
			http.Error(w, "error, invalid program", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to create program [%s]: %s", p.Type, err)
		http.Error(w, "error, failed to create program", http.StatusInternalServerError)
		return
	}

	createdJson, err := json.Marshal(created)
	if err != nil {
		log.Errorf("failed to marshal created program: %s", err)
		http.Error(w, "error, failed to create program", http.StatusInternalServerError)
		return
	}

	log.Debugf("new program created: %s", createdJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, createdJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.get")
	defer span.End()

	id, ok := programID(w, r)
	if !ok {
		return
	}

	p, err := handler.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			http.Error(w, "program not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get program %d: %s", id, err)
		http.Error(w, "failed to get program", http.StatusInternalServerError)
		return
	}

	programJson, err := json.Marshal(p)
	if err != nil {
		log.Errorf("failed to marshal program: %s", err)
		http.Error(w, "failed to marshal program", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, programJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.list")
	defer span.End()

	programs, err := handler.service.List(ctx)
	if err != nil {
		log.Errorf("list programs error: %s", err)
		http.Error(w, "failed to get programs", http.StatusInternalServerError)
		return
	}

	listJson, err := json.Marshal(ListProgramsResponse{Programs: programs})
	if err != nil {
		log.Errorf("marshal programs error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.delete")
	defer span.End()

	id, ok := programID(w, r)
	if !ok {
		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			http.Error(w, "program not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete program %d: %s", id, err)
		http.Error(w, "program not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteProgramResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleNextWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.next-workout")
	defer span.End()

	id, ok := programID(w, r)
	if !ok {
		return
	}

	withLoading := r.URL.Query().Get("plates") == "true"

	nextWorkout, err := handler.service.NextWorkout(ctx, id, withLoading)
	if err != nil {
		switch {
		case errors.Is(err, ErrProgramNotFound):
			http.Error(w, "program not found", http.StatusNotFound)
		case errors.Is(err, training.ErrInvalidProgramState):
			http.Error(w, "invalid program state", http.StatusBadRequest)
		default:
			log.Errorf("failed to generate next workout for program %d: %s", id, err)
			http.Error(w, "failed to generate next workout", http.StatusInternalServerError)
		}
		return
	}

	workoutJson, err := json.Marshal(nextWorkout)
	if err != nil {
		log.Errorf("failed to marshal next workout: %s", err)
		http.Error(w, "failed to marshal next workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (handler *Handler) HandleCompleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.complete-session")
	defer span.End()

	id, ok := programID(w, r)
	if !ok {
		return
	}

	advanced, err := handler.service.CompleteSession(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrProgramNotFound):
			http.Error(w, "program not found", http.StatusNotFound)
		case errors.Is(err, training.ErrInvalidProgramState):
			http.Error(w, "invalid program state", http.StatusBadRequest)
		default:
			log.Errorf("failed to complete session for program %d: %s", id, err)
			http.Error(w, "failed to complete session", http.StatusInternalServerError)
		}
		return
	}

	advancedJson, err := json.Marshal(advanced)
	if err != nil {
		log.Errorf("failed to marshal advanced program: %s", err)
		http.Error(w, "failed to marshal advanced program", http.StatusInternalServerError)
		return
	}

	log.Debugf("program %d advanced: %s", id, advancedJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, advancedJson, http.StatusOK)
}

func (handler *Handler) HandleSolvePlates(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.program.solve-plates")
	defer span.End()

	targetStr := r.URL.Query().Get("target")
	if targetStr == "" {
		http.Error(w, "error, target param empty", http.StatusBadRequest)
		return
	}
	target, err := strconv.ParseFloat(targetStr, 64)
	if err != nil || target <= 0 {
		http.Error(w, "error, invalid target param", http.StatusBadRequest)
		return
	}

	result := handler.service.SolvePlates(target)

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal plate solve result: %s", err)
		http.Error(w, "failed to marshal plate solve result", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusOK)
}

func programID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
