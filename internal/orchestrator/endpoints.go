package orchestrator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"linear-solver/internal/db"
	"linear-solver/internal/logger"
	"linear-solver/internal/task"
)

// NewRouter регистрирует маршруты источника задач.
// Агент работает с корнем: GET выдает задачу, POST принимает решение.
func NewRouter(s *Source) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.HandleGetTask).Methods("GET")
	r.HandleFunc("/", s.HandlePostTaskResult).Methods("POST")
	r.HandleFunc("/results", HandleGetResults).Methods("GET")
	r.HandleFunc("/results/{id}", HandleGetResultByID).Methods("GET")
	return r
}

func (s *Source) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	logger.LogINFO("Received get task request")

	body, err := s.NextTask()
	if err != nil {
		if errors.Is(err, ErrQueueIsEmpty) {
			logger.LogINFO("Queue is empty")
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.LogERROR(fmt.Sprintf("Failed to create task: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Source) HandlePostTaskResult(w http.ResponseWriter, r *http.Request) {
	logger.LogINFO("Received post task result request")
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.ProcessResult(body)
	if err != nil {
		var decodeErr *task.DecodeError
		if errors.As(err, &decodeErr) {
			logger.LogERROR(fmt.Sprintf("Failed to decode task result: %v", err))
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.LogERROR(fmt.Sprintf("Failed to store task result: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.LogINFO(fmt.Sprintf("Successfully stored task result. Task id: %v", result.Identifier))
	w.WriteHeader(http.StatusOK)
}

// ResultResponse - результат в ответе API. Неконечная невязка отдается как null.
type ResultResponse struct {
	*db.Result
	Residual *float64 `json:"residual"`
}

func newResultResponse(r *db.Result) ResultResponse {
	resp := ResultResponse{Result: r}
	if !math.IsNaN(r.Residual) && !math.IsInf(r.Residual, 0) {
		v := r.Residual
		resp.Residual = &v
	}
	return resp
}

func HandleGetResults(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	results, err := db.ListResults(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := make([]ResultResponse, len(results))
	for i, result := range results {
		response[i] = newResultResponse(result)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func HandleGetResultByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Неверный id", http.StatusBadRequest)
		return
	}

	result, err := db.GetResultByIdentifier(id)
	if err != nil {
		if errors.Is(err, db.ErrResultNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(newResultResponse(result)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
