package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/present"
	"github.com/teimsafety/ppectl/internal/services"
	"github.com/teimsafety/ppectl/internal/shared"
	"github.com/teimsafety/ppectl/internal/submit"
	tu "github.com/teimsafety/ppectl/internal/testing"
)

func newTestModel(t *testing.T, detector services.Detector) (*Model, *submit.Controller) {
	t.Helper()

	ledger, err := media.NewLedger(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
	t.Cleanup(func() { ledger.RevokeAll() })

	source := media.NewSource(ledger, nil)
	controller := submit.NewController(detector, nil)
	t.Cleanup(controller.Teardown)

	presenter := present.NewPresenter(ledger, &tu.MockNotifier{}, "http://example.com", nil)
	model := NewModel(context.Background(), source, shared.CameraConfig{}, controller, presenter)
	return model, controller
}

func waitForState(t *testing.T, c *submit.Controller, want submit.State) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Snapshot().State == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s", want)
}

func TestModel(t *testing.T) {
	t.Run("Init", func(t *testing.T) {
		model, _ := newTestModel(t, &tu.MockDetector{})

		if model.view != SourceView {
			t.Errorf("expected initial source view, got %d", model.view)
		}
		if cmd := model.Init(); cmd == nil {
			t.Error("expected Init to start the event listener")
		}
	})

	t.Run("WindowSize", func(t *testing.T) {
		model, _ := newTestModel(t, &tu.MockDetector{})

		model.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
		if model.bar.Width != 60 {
			t.Errorf("expected progress bar width capped at 60, got %d", model.bar.Width)
		}

		model.Update(tea.WindowSizeMsg{Width: 40, Height: 50})
		if model.bar.Width != 32 {
			t.Errorf("expected progress bar width 32, got %d", model.bar.Width)
		}
	})

	t.Run("MediaAcquired", func(t *testing.T) {
		t.Run("Error Shows Inline", func(t *testing.T) {
			model, _ := newTestModel(t, &tu.MockDetector{})

			model.Update(mediaAcquiredMsg{err: errors.New("unreadable file")})

			if model.inlineErr == nil {
				t.Fatal("expected inline error to be set")
			}
			if model.view != SourceView {
				t.Error("acquisition failure must not leave the source view")
			}
			if !strings.Contains(model.View(), "unreadable file") {
				t.Error("expected inline error in rendered view")
			}
		})

		t.Run("Blob Installs Into Controller", func(t *testing.T) {
			model, controller := newTestModel(t, &tu.MockDetector{})

			blob := &media.Blob{Name: "site.jpg", MIME: "image/jpeg", Data: []byte("x")}
			_, cmd := model.Update(mediaAcquiredMsg{blob: blob})

			if controller.Blob() != blob {
				t.Error("expected blob to be acquired by the controller")
			}
			if model.inlineErr != nil {
				t.Errorf("expected inline error to clear, got %v", model.inlineErr)
			}
			if cmd != nil {
				t.Error("a captured frame must wait for enter, not submit itself")
			}
			if state := controller.Snapshot().State; state != submit.StateIdle {
				t.Errorf("expected controller to stay idle, got %s", state)
			}
		})

		t.Run("Submit Flag Starts Submission", func(t *testing.T) {
			detector := &tu.MockDetector{Result: &services.DetectionResult{}}
			model, controller := newTestModel(t, detector)

			blob := &media.Blob{Name: "site.jpg", MIME: "image/jpeg", Data: []byte("x")}
			_, cmd := model.Update(mediaAcquiredMsg{blob: blob, submit: true})
			if cmd == nil {
				t.Fatal("expected acquisition to return a submission command")
			}

			cmd()
			waitForState(t, controller, submit.StateCompleted)
		})
	})

	t.Run("SourceKeys", func(t *testing.T) {
		t.Run("Enter Acquires Then Submits", func(t *testing.T) {
			detector := &tu.MockDetector{Result: &services.DetectionResult{
				Summary: map[string]int{"helmet": 1},
			}}
			model, controller := newTestModel(t, detector)

			path := filepath.Join(t.TempDir(), "site.jpg")
			if err := os.WriteFile(path, []byte("fake jpeg bytes"), 0o644); err != nil {
				t.Fatalf("failed to write fixture: %v", err)
			}
			model.pathInput.SetValue(path)

			_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("expected enter to acquire the file")
			}

			msg, ok := cmd().(mediaAcquiredMsg)
			if !ok {
				t.Fatal("expected a media acquisition message")
			}
			if msg.err != nil {
				t.Fatalf("failed to acquire file: %v", msg.err)
			}

			_, follow := model.Update(msg)
			if follow == nil {
				t.Fatal("expected the same keypress to start the submission")
			}

			follow()
			waitForState(t, controller, submit.StateCompleted)
		})

		t.Run("Toggle Switches Input Focus", func(t *testing.T) {
			model, _ := newTestModel(t, &tu.MockDetector{})

			model.Update(tea.KeyMsg{Type: tea.KeyTab})
			if !model.cameraMode {
				t.Fatal("expected tab to enter camera mode")
			}
			if model.pathInput.Focused() {
				t.Error("expected path input to blur in camera mode")
			}

			model.Update(tea.KeyMsg{Type: tea.KeyTab})
			if model.cameraMode {
				t.Fatal("expected tab to leave camera mode")
			}
			if !model.pathInput.Focused() {
				t.Error("expected path input to refocus")
			}
		})
	})

	t.Run("ControllerTick", func(t *testing.T) {
		t.Run("Completion Presents Result", func(t *testing.T) {
			detector := &tu.MockDetector{Result: &services.DetectionResult{
				Summary:       map[string]int{"helmet": 1},
				AnnotatedPath: "/media/out/1.jpg",
			}}
			model, controller := newTestModel(t, detector)

			controller.Acquire(&media.Blob{Name: "site.jpg", MIME: "image/jpeg", Data: []byte("x")})
			if err := controller.Submit(context.Background()); err != nil {
				t.Fatalf("failed to submit: %v", err)
			}
			waitForState(t, controller, submit.StateCompleted)

			model.Update(controllerTickMsg{})

			if model.view != ResultView {
				t.Fatalf("expected result view, got %d", model.view)
			}
			if model.display == nil {
				t.Fatal("expected display to be derived")
			}
			if model.display.AnnotatedURL != "http://example.com/media/out/1.jpg" {
				t.Errorf("unexpected annotated URL: %s", model.display.AnnotatedURL)
			}
			if !strings.Contains(model.View(), "helmet") {
				t.Error("expected summary label in rendered view")
			}
		})

		t.Run("Failure Renders Error", func(t *testing.T) {
			detector := &tu.MockDetector{Err: errors.New("model unavailable")}
			model, controller := newTestModel(t, detector)

			controller.Acquire(&media.Blob{Name: "site.jpg", MIME: "image/jpeg", Data: []byte("x")})
			if err := controller.Submit(context.Background()); err != nil {
				t.Fatalf("failed to submit: %v", err)
			}
			waitForState(t, controller, submit.StateFailed)

			model.Update(controllerTickMsg{})

			if model.view != ResultView {
				t.Fatalf("expected result view, got %d", model.view)
			}
			if !strings.Contains(model.View(), "model unavailable") {
				t.Error("expected failure detail in rendered view")
			}
		})
	})

	t.Run("ResultKeys", func(t *testing.T) {
		t.Run("Restart Returns To Source View", func(t *testing.T) {
			model, _ := newTestModel(t, &tu.MockDetector{})
			model.view = ResultView
			model.display = &present.Display{}
			model.alert = "stale alert"

			model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

			if model.view != SourceView {
				t.Errorf("expected source view after restart, got %d", model.view)
			}
			if model.display != nil {
				t.Error("expected display to be cleared")
			}
			if model.alert != "" {
				t.Error("expected alert to be cleared")
			}
		})
	})

	t.Run("NotifyOutcome", func(t *testing.T) {
		model, _ := newTestModel(t, &tu.MockDetector{})
		model.view = ResultView

		model.Update(notifyDoneMsg{})
		if model.alert != "Notification sent." {
			t.Errorf("unexpected alert: %q", model.alert)
		}

		model.Update(notifyDoneMsg{err: errors.New("relay down")})
		if !strings.Contains(model.alert, "relay down") {
			t.Errorf("expected failure alert, got %q", model.alert)
		}
	})
}
