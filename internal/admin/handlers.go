package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/ops"
)

func (s *Server) handleListDrones(w http.ResponseWriter, r *http.Request) {
	drones, err := s.svc.ListDrones(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drones)
}

func (s *Server) handleCreateDrone(w http.ResponseWriter, r *http.Request) {
	var in ops.DroneInput
	if !decode(w, r, &in) {
		return
	}
	d, err := s.svc.CreateDrone(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleDroneStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.DroneStatusSnapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateDrone(w http.ResponseWriter, r *http.Request) {
	var p ops.DronePatch
	if !decode(w, r, &p) {
		return
	}
	d, err := s.svc.UpdateDrone(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleRemoveDrone(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.RemoveDrone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListDeliveries(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateDelivery(w http.ResponseWriter, r *http.Request) {
	var in ops.DeliveryInput
	if !decode(w, r, &in) {
		return
	}
	d, err := s.svc.CreateDelivery(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleUpdateDelivery(w http.ResponseWriter, r *http.Request) {
	var p ops.DeliveryPatch
	if !decode(w, r, &p) {
		return
	}
	d, err := s.svc.UpdateDelivery(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleRemoveDelivery(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.RemoveDelivery(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCancelDelivery(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.CancelDelivery(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListFlights(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListFlights(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleScheduleFlight accepts an optional {"deliveryId": "..."} body. An
// empty body lets the dispatcher pick the next delivery.
func (s *Server) handleScheduleFlight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeliveryID string `json:"deliveryId"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error(), Code: fleet.ErrValidation.Code})
			return
		}
	}
	f, err := s.svc.ScheduleFlight(r.Context(), req.DeliveryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleFlightHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.FlightHistory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAdvanceFlight(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.AdvanceFlight(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleUpdateFlight(w http.ResponseWriter, r *http.Request) {
	var p ops.FlightPatch
	if !decode(w, r, &p) {
		return
	}
	f, err := s.svc.UpdateFlight(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleRemoveFlight(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.RemoveFlight(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListObstacles(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListObstacles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateObstacle(w http.ResponseWriter, r *http.Request) {
	var in ops.ObstacleInput
	if !decode(w, r, &in) {
		return
	}
	o, err := s.svc.CreateObstacle(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleRemoveObstacle(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.RemoveObstacle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
