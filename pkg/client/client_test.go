package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/terra-clan/swim-timer/internal/api"
	"github.com/terra-clan/swim-timer/internal/config"
	"github.com/terra-clan/swim-timer/internal/models"
	"github.com/terra-clan/swim-timer/internal/publish"
	"github.com/terra-clan/swim-timer/internal/race"
	"github.com/terra-clan/swim-timer/internal/roster"
)

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	catalog, err := roster.NewCatalog([]roster.Row{
		{Line: 2, ID: "1", Name: "Alice", Age: "42", Gender: "F", RaceCategory: "1500m"},
		{Line: 3, ID: "2", Name: "Bruno", Age: "27", Gender: "M", RaceCategory: "1500m"},
	}, nil)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	server := api.NewServer(config.ServerConfig{Port: 8080}, race.NewEngine(catalog), publish.NewRegistry(), nil)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return NewClient(ts.URL, opts...)
}

func TestClientRaceFlow(t *testing.T) {
	c := newTestClient(t, WithObserver("finish-line"), WithTimeout(5*time.Second))
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	status, err := c.StartRace(ctx)
	if err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}
	if status.State != models.RaceRunning || status.Participants != 2 {
		t.Errorf("unexpected status: %+v", status)
	}

	result, err := c.RecordFinish(ctx, 2)
	if err != nil {
		t.Fatalf("RecordFinish failed: %v", err)
	}
	if !result.Created || result.Record.RecordedBy != "finish-line" {
		t.Errorf("unexpected finish: %+v", result)
	}

	again, err := c.RecordFinish(ctx, 2)
	if err != nil {
		t.Fatalf("repeated RecordFinish failed: %v", err)
	}
	if again.Created || again.Record.Sequence != result.Record.Sequence {
		t.Errorf("expected original record, got %+v", again)
	}

	finished, err := c.HasFinished(ctx, 2)
	if err != nil || !finished {
		t.Errorf("HasFinished(2) = %v, %v", finished, err)
	}
	finished, err = c.HasFinished(ctx, 1)
	if err != nil || finished {
		t.Errorf("HasFinished(1) = %v, %v", finished, err)
	}

	finishes, err := c.ListFinishes(ctx)
	if err != nil || len(finishes) != 1 {
		t.Errorf("ListFinishes = %v, %v", finishes, err)
	}

	stop, err := c.StopRace(ctx)
	if err != nil || stop.AlreadyStopped {
		t.Fatalf("StopRace = %+v, %v", stop, err)
	}
	stop, err = c.StopRace(ctx)
	if err != nil || !stop.AlreadyStopped {
		t.Errorf("second StopRace = %+v, %v", stop, err)
	}

	snap, err := c.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if len(snap.Overall) != 1 || snap.Overall[0].ID != 2 || snap.Overall[0].AgeCategory != "20-29" {
		t.Errorf("unexpected snapshot: %+v", snap.Overall)
	}

	csv, err := c.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	if !strings.HasPrefix(string(csv), "participantId,name,age,ageCategory,gender,club,elapsedSeconds\n2,Bruno,27,20-29,M,,") {
		t.Errorf("unexpected CSV: %q", csv)
	}

	status, err = c.ResetRace(ctx)
	if err != nil || status.State != models.RaceIdle || status.Finishers != 0 {
		t.Errorf("ResetRace = %+v, %v", status, err)
	}
}

func TestClientAPIErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.RecordFinish(ctx, 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Code != "race_not_running" {
		t.Errorf("unexpected error: %+v", apiErr)
	}

	if _, err := c.StartRace(ctx); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}
	_, err = c.RecordFinish(ctx, 99)
	if !errors.As(err, &apiErr) || apiErr.Code != "unknown_participant" {
		t.Errorf("expected unknown_participant, got %v", err)
	}

	_, err = c.SelectCategory(ctx, "1500m")
	if !errors.As(err, &apiErr) || apiErr.Code != "invalid_state" {
		t.Errorf("expected invalid_state, got %v", err)
	}
}

func TestClientGetState(t *testing.T) {
	c := newTestClient(t)

	status, err := c.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if status.State != models.RaceIdle || status.Clock != "00:00.00" {
		t.Errorf("unexpected status: %+v", status)
	}

	status, err = c.SelectCategory(context.Background(), "1500m")
	if err != nil {
		t.Fatalf("SelectCategory failed: %v", err)
	}
	if status.RaceCategory != "1500m" {
		t.Errorf("expected 1500m, got %q", status.RaceCategory)
	}
}

func TestClientNonEnvelopeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).GetState(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Code != "http_error" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}
