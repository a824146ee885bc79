package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/present"
	"github.com/teimsafety/ppectl/internal/services"
	"github.com/teimsafety/ppectl/internal/shared"
	"github.com/teimsafety/ppectl/internal/submit"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SourceView ViewState = iota
	SubmittingView
	ResultView
)

// Model represents the TUI application state.
//
// All submission state lives in the controller; the model only mirrors its
// latest snapshot for rendering.
type Model struct {
	ctx        context.Context
	view       ViewState
	source     *media.Source
	camera     shared.CameraConfig
	controller *submit.Controller
	presenter  *present.Presenter

	cameraMode bool
	pathInput  textinput.Model
	bar        progress.Model
	snapshot   submit.Snapshot
	display    *present.Display
	alert      string // transient notification outcome, never submission state
	inlineErr  error  // local acquisition errors, shown inline
	width      int
	height     int
	help       help.Model
	keys       keyMap
}

type mediaAcquiredMsg struct {
	blob *media.Blob
	err  error
	// submit starts the submission as soon as the blob is acquired.
	// Camera captures leave it false so the operator can review the frame.
	submit bool
}

type controllerTickMsg struct{}

type notifyDoneMsg struct {
	err error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source *media.Source, camera shared.CameraConfig, controller *submit.Controller, presenter *present.Presenter) *Model {
	input := textinput.New()
	input.Placeholder = "path/to/image-or-video"
	input.Focus()

	return &Model{
		ctx:        ctx,
		view:       SourceView,
		source:     source,
		camera:     camera,
		controller: controller,
		presenter:  presenter,
		pathInput:  input,
		bar:        progress.New(progress.WithDefaultGradient()),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts listening for controller events.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvents()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-8, 60)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "q" && !m.pathInput.Focused() || msg.String() == "ctrl+c" {
			m.teardown()
			return m, tea.Quit
		}
		switch m.view {
		case SourceView:
			return m.handleSourceKeys(msg)
		case SubmittingView:
			// Acquiring new media supersedes the in-flight submission.
			return m.handleSourceKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case mediaAcquiredMsg:
		if msg.err != nil {
			m.inlineErr = msg.err
			return m, nil
		}
		m.inlineErr = nil
		m.display = nil
		m.controller.Acquire(msg.blob)
		if msg.submit {
			return m, m.startSubmission()
		}
		return m, nil

	case controllerTickMsg:
		return m.syncController()

	case notifyDoneMsg:
		if msg.err != nil {
			m.alert = fmt.Sprintf("Notification failed: %v", msg.err)
		} else {
			m.alert = "Notification sent."
		}
		return m, m.waitForEvents()
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SourceView:
		return m.renderSource()
	case SubmittingView:
		return m.renderSubmitting()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSourceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.cameraMode = !m.cameraMode
		if m.cameraMode {
			m.pathInput.Blur()
		} else {
			m.pathInput.Focus()
		}
		return m, nil
	case " ":
		if m.cameraMode {
			return m, m.captureFrame()
		}
	case "enter":
		if m.cameraMode {
			return m, m.startSubmission()
		}
		if path := m.pathInput.Value(); path != "" && m.controller.Blob() == nil {
			return m, m.acquireFile(path)
		}
		return m, m.startSubmission()
	}

	if !m.cameraMode {
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		return m, m.sendNotification()
	case "r":
		m.view = SourceView
		m.display = nil
		m.alert = ""
		m.inlineErr = nil
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		return m, m.waitForEvents()
	}
	return m, nil
}

// syncController mirrors the controller snapshot into the view.
func (m *Model) syncController() (tea.Model, tea.Cmd) {
	m.snapshot = m.controller.Snapshot()

	switch m.snapshot.State {
	case submit.StateSubmitting:
		m.view = SubmittingView
	case submit.StateCompleted:
		if m.display == nil {
			display, err := m.presenter.Present(m.snapshot.Result)
			if err != nil {
				m.inlineErr = err
			} else {
				m.display = display
			}
		}
		m.view = ResultView
	case submit.StateFailed:
		m.view = ResultView
	}

	return m, m.waitForEvents()
}

func (m *Model) acquireFile(path string) tea.Cmd {
	return func() tea.Msg {
		blob, err := m.source.FromFile(path)
		return mediaAcquiredMsg{blob: blob, err: err, submit: true}
	}
}

func (m *Model) captureFrame() tea.Cmd {
	return func() tea.Msg {
		// The session lives and dies inside this command so the model
		// never shares camera state across goroutines.
		session, err := media.OpenCamera(m.camera)
		if err != nil {
			return mediaAcquiredMsg{err: err}
		}
		defer session.Close()

		blob, err := m.source.Capture(session)
		if err != nil {
			return mediaAcquiredMsg{err: err}
		}
		return mediaAcquiredMsg{blob: blob}
	}
}

func (m *Model) startSubmission() tea.Cmd {
	return func() tea.Msg {
		if err := m.controller.Submit(m.ctx); err != nil {
			return mediaAcquiredMsg{err: err}
		}
		return nil
	}
}

func (m *Model) sendNotification() tea.Cmd {
	return func() tea.Msg {
		return notifyDoneMsg{err: m.presenter.Notify(m.ctx, services.NotifyPPE)}
	}
}

// waitForEvents blocks on the controller's change signal.
func (m *Model) waitForEvents() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.controller.Events(); !ok {
			return nil
		}
		return controllerTickMsg{}
	}
}

func (m *Model) teardown() {
	m.controller.Teardown()
}

func (m *Model) renderSource() string {
	title := styles.title.Render("PPE Detection")

	var body string
	if m.cameraMode {
		body = "Camera mode: press space to capture a frame, enter to submit."
		if blob := m.controller.Blob(); blob != nil {
			body += fmt.Sprintf("\nCaptured: %s (%d bytes)", blob.Name, len(blob.Data))
		}
	} else {
		body = fmt.Sprintf("Select an image or video to analyze:\n\n%s", m.pathInput.View())
	}

	var errLine string
	if m.inlineErr != nil {
		errLine = "\n" + styles.err.Render(m.inlineErr.Error())
	}

	helpView := m.help.ShortHelpView(m.keys.FullHelp()[0])
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, body, errLine, helpView)
}

func (m *Model) renderSubmitting() string {
	title := styles.title.Render("Analyzing")
	bar := m.bar.ViewAs(float64(m.snapshot.Progress) / 100)
	return fmt.Sprintf("%s\n%s\n\nUploading and processing... %d%%", title, bar, m.snapshot.Progress)
}

func (m *Model) renderResult() string {
	if m.snapshot.State == submit.StateFailed {
		msg := styles.err.Render(fmt.Sprintf("Check failed: %v", m.snapshot.Err))
		return fmt.Sprintf("%s\n\nPress r to start a new check, q to quit", msg)
	}

	title := styles.ok.Render("✓ Check complete")

	var body string
	if m.display != nil {
		if len(m.display.Summary) == 0 {
			body = "\nNo objects detected."
		}
		for _, row := range m.display.Summary {
			body += fmt.Sprintf("\n  %-16s %d", row.Label, row.Count)
		}
		if m.display.AnnotatedURL != "" {
			body += fmt.Sprintf("\n\nAnnotated media: %s", m.display.AnnotatedURL)
		}
	}

	var alert string
	if m.alert != "" {
		alert = "\n\n" + styles.warn.Render(m.alert)
	}

	helpView := m.help.ShortHelpView(m.keys.FullHelp()[1])
	return fmt.Sprintf("%s%s%s\n\n%s", title, body, alert, helpView)
}
