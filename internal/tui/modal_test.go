package tui

import (
	"errors"
	"strings"
	"testing"
)

func TestModalLoadingState(t *testing.T) {
	m := NewChartModalModel()
	m.OpenLoading()

	if !m.IsActive() {
		t.Fatalf("modal not active after OpenLoading")
	}
	view := m.View()
	if !strings.Contains(view, "Generating charts from this conversation...") {
		t.Fatalf("loading text missing: %q", view)
	}

	// ESC closes even mid-fetch so a stalled request cannot trap the user
	m, _ = m.Update(key("esc"))
	if m.IsActive() {
		t.Fatalf("esc must close the modal while loading")
	}
}

func TestModalEmptyGalleryText(t *testing.T) {
	m := NewChartModalModel()
	m.OpenLoading()
	m.SetCharts([]ChartItem{
		{Type: "tensile", Err: errors.New("not available")},
		{Type: "density", Err: errors.New("not available")},
		{Type: "radar", Err: errors.New("not available")},
	})

	view := m.View()
	if !strings.Contains(view, "No charts available for this conversation yet.") {
		t.Fatalf("empty-gallery text missing: %q", view)
	}

	m, _ = m.Update(key("esc"))
	if m.IsActive() {
		t.Fatalf("esc must close the settled modal")
	}
}

func TestModalListsSavedCharts(t *testing.T) {
	m := NewChartModalModel()
	m.OpenLoading()
	m.SetCharts([]ChartItem{
		{Type: "tensile", Path: "/tmp/tensile_chart_abc123.png"},
		{Type: "density", Err: errors.New("not available")},
		{Type: "radar", Path: "/tmp/radar_chart_abc123.png"},
	})

	view := m.View()
	if !strings.Contains(view, "/tmp/tensile_chart_abc123.png") {
		t.Fatalf("saved chart missing from view: %q", view)
	}
	if !strings.Contains(view, "density: not available") {
		t.Fatalf("failed chart not marked: %q", view)
	}
}

func TestModalOpenSelectedChart(t *testing.T) {
	m := NewChartModalModel()
	m.OpenLoading()
	m.SetCharts([]ChartItem{
		{Type: "tensile", Path: "/tmp/tensile_chart_abc123.png"},
		{Type: "radar", Path: "/tmp/radar_chart_abc123.png"},
	})

	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("expected an open command")
	}
	msg, ok := cmd().(OpenChartMsg)
	if !ok {
		t.Fatalf("expected OpenChartMsg, got %T", msg)
	}
	if msg.Path != "/tmp/radar_chart_abc123.png" {
		t.Fatalf("wrong chart opened: %q", msg.Path)
	}
}

func TestModalEnterWhileLoadingDoesNothing(t *testing.T) {
	m := NewChartModalModel()
	m.OpenLoading()

	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Fatalf("enter must be inert while loading")
	}
	_ = m
}

func TestModalCursorSkipsFailedCharts(t *testing.T) {
	m := NewChartModalModel()
	m.OpenLoading()
	m.SetCharts([]ChartItem{
		{Type: "tensile", Err: errors.New("not available")},
		{Type: "density", Path: "/tmp/density_chart_abc123.png"},
	})

	// Only one saved chart: the cursor must not move past it
	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("expected an open command")
	}
	msg := cmd().(OpenChartMsg)
	if msg.Path != "/tmp/density_chart_abc123.png" {
		t.Fatalf("wrong chart opened: %q", msg.Path)
	}
}
