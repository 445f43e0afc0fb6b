package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dohr-michael/taskchat/internal/events"
	"github.com/dohr-michael/taskchat/internal/tasks"
)

// taskRequest is the create/update body. Pointer fields distinguish
// "absent" from "set to empty"; an explicit empty due_date clears the
// deadline on update.
type taskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	params := tasks.CreateParams{}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Status != nil {
		params.Status = tasks.Status(*req.Status)
	}
	if req.Priority != nil {
		params.Priority = tasks.Priority(*req.Priority)
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := tasks.ParseDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due_date format, use YYYY-MM-DD")
			return
		}
		params.DueDate = &due
	}

	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.store.Create(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishTaskChange("created", task)
	writeJSON(w, http.StatusCreated, taskJSON(task))
}

var quickDateRe = regexp.MustCompile(`(?i)\b(today|tomorrow|in \d+ days?)\b`)

// handleTaskQuickAdd creates a task from a single line of free text.
// Priority, status, and due date are guessed from the wording; a
// recognized date phrase is stripped from the title.
func (s *Server) handleTaskQuickAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	params := tasks.CreateParams{Priority: tasks.PriorityFromText(text)}
	if status := tasks.StatusFromText(text); status != "" {
		params.Status = status
	}
	if phrase := quickDateRe.FindString(text); phrase != "" {
		if due, err := tasks.ParseNaturalDate(phrase, time.Now()); err == nil {
			params.DueDate = &due
		}
		text = strings.Join(strings.Fields(strings.Replace(text, phrase, "", 1)), " ")
	}
	params.Title = strings.TrimRight(text, " .,!")

	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.store.Create(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishTaskChange("created", task)
	writeJSON(w, http.StatusCreated, taskJSON(task))
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r, 100, 1000)

	list, err := s.store.List(r.Context(), skip, limit, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, taskList(list))
}

func (s *Server) handleTaskFilter(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	skip, limit := pagination(r, 100, 1000)

	list, err := s.store.List(r.Context(), skip, limit, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, taskList(list))
}

func (s *Server) handleTaskCount(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := s.store.Count(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(task))
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	params := tasks.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := tasks.Status(*req.Status)
		params.Status = &status
	}
	if req.Priority != nil {
		priority := tasks.Priority(*req.Priority)
		params.Priority = &priority
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			params.ClearDue = true
		} else {
			due, err := tasks.ParseDate(*req.DueDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid due_date format, use YYYY-MM-DD")
				return
			}
			params.DueDate = &due
		}
	}

	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.store.Update(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishTaskChange("updated", task)
	writeJSON(w, http.StatusOK, taskJSON(task))
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := s.store.Get(r.Context(), id)
	if err != nil && !errors.Is(err, tasks.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if task != nil {
		s.publishTaskChange("deleted", task)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) publishTaskChange(action string, t *tasks.Task) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.NewTypedEvent(events.SourceGateway, events.TaskChangedPayload{
		Action: action,
		TaskID: t.ID,
		Title:  t.Title,
	}))
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request, defaultLimit, maxLimit int) (skip, limit int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			skip = n
		}
	}
	return skip, limit
}

// filterFromQuery builds a task filter from query parameters. Date
// bounds are inclusive: due_before covers the whole named day.
func filterFromQuery(r *http.Request) (*tasks.Filter, error) {
	q := r.URL.Query()
	filter := &tasks.Filter{}

	if v := q.Get("status"); v != "" {
		status := tasks.Status(v)
		if !status.Valid() {
			return nil, &tasks.ValidationError{Field: "status", Reason: "must be pending, in_progress, or done"}
		}
		filter.Status = status
	}
	if v := q.Get("priority"); v != "" {
		priority := tasks.Priority(v)
		if !priority.Valid() {
			return nil, &tasks.ValidationError{Field: "priority", Reason: "must be low, medium, or high"}
		}
		filter.Priority = priority
	}
	if v := q.Get("due_before"); v != "" {
		due, err := tasks.ParseDate(v)
		if err != nil {
			return nil, &tasks.ValidationError{Field: "due_before", Reason: "invalid format, use YYYY-MM-DD"}
		}
		due = due.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		filter.DueBefore = &due
	}
	if v := q.Get("due_after"); v != "" {
		due, err := tasks.ParseDate(v)
		if err != nil {
			return nil, &tasks.ValidationError{Field: "due_after", Reason: "invalid format, use YYYY-MM-DD"}
		}
		filter.DueAfter = &due
	}

	if filter.IsZero() {
		return nil, nil
	}
	return filter, nil
}
