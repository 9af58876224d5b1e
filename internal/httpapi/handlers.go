package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/kvolkov/quizroom/internal/engine"
	"github.com/kvolkov/quizroom/pkg/types"
)

// State serves a race-free snapshot of the controller's session.
func State(c *engine.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := c.Snapshot()
		if err != nil {
			http.Error(w, "controller is down", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toSnapshot(view))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func toSnapshot(v engine.View) types.StateSnapshot {
	sess := v.Session

	snap := types.StateSnapshot{
		Name:          sess.Name,
		Role:          sess.Role.String(),
		HostName:      sess.HostName,
		Stage:         sess.Stage.Name,
		RoundIndex:    sess.Stage.RoundIndex,
		IsGameStarted: sess.Stage.IsGameStarted,
		IsPaused:      sess.Stage.IsPaused,
		ThemeName:     sess.ThemeName,
		CurrentPrice:  sess.CurrentPrice,
		Decision:      v.Decision.String(),
		ReportText:    v.ReportText,
		CanPress:      sess.CanPress,
		IsSelectable:  sess.IsSelectable,
		Closed:        v.Closed,
		Showman: types.ShowmanSnapshot{
			Name:       sess.Showman.Name,
			IsHuman:    sess.Showman.IsHuman,
			IsReady:    sess.Showman.IsReady,
			IsDeciding: sess.Showman.IsDeciding,
			Replic:     sess.Showman.Replic,
		},
	}

	for _, p := range sess.Persons {
		snap.Persons = append(snap.Persons, types.PersonSnapshot{
			Name:    p.Name,
			IsHuman: p.IsHuman,
			Avatar:  p.Avatar,
		})
	}
	sort.Slice(snap.Persons, func(i, j int) bool { return snap.Persons[i].Name < snap.Persons[j].Name })

	for _, p := range sess.Players {
		snap.Players = append(snap.Players, types.PlayerSnapshot{
			Name:          p.Name,
			IsHuman:       p.IsHuman,
			IsReady:       p.IsReady,
			Sum:           p.Sum,
			Stake:         p.Stake,
			State:         p.State.String(),
			InGame:        p.InGame,
			IsChooser:     p.IsChooser,
			CanBeSelected: p.CanBeSelected,
			IsDeciding:    p.IsDeciding,
			Answer:        p.Answer,
			Replic:        p.Replic,
		})
	}

	for _, t := range sess.Themes {
		snap.Themes = append(snap.Themes, types.ThemeSnapshot{
			Name:      t.Name,
			Questions: append([]int(nil), t.Questions...),
		})
	}

	for i := range snap.Timers {
		snap.Timers[i] = types.TimerSnapshot{
			State:   v.Timers[i].State.String(),
			Value:   v.Timers[i].Value,
			Maximum: v.Timers[i].Maximum,
		}
	}

	return snap
}
