package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	m "overdub.dev/pkg/overdub/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	killedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	survivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI with a live Bubble Tea progress view for mutation
// runs. Batch displays fall back to the simple printer.
type TUI struct {
	cmd     *cobra.Command
	simple  *SimpleUI
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{cmd: cmd, simple: NewSimpleUI(cmd)}
}

// Start launches the live view when mutation-progress mode is requested.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	if config.mode != ModeMutate {
		return nil
	}

	t.done = make(chan struct{})
	t.program = tea.NewProgram(newMutateModel(), tea.WithOutput(t.cmd.OutOrStdout()))

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			t.simple.printf("progress view failed: %v\n", err)
		}
	}()

	return nil
}

// Close stops the live view if one is running.
func (t *TUI) Close(ctx context.Context) {
	if t.program != nil {
		t.program.Quit()
	}

	t.simple.Close(ctx)
}

// Wait blocks until the live view has shut down.
func (t *TUI) Wait(ctx context.Context) {
	if t.done == nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-t.done:
	}
}

// DisplayPrograms prints a table of loaded programs.
func (t *TUI) DisplayPrograms(ctx context.Context, infos []m.ProgramInfo) error {
	return t.simple.DisplayPrograms(ctx, infos)
}

// DisplayListing prints a rendered program listing.
func (t *TUI) DisplayListing(ctx context.Context, listing string) error {
	return t.simple.DisplayListing(ctx, listing)
}

// DisplayTrace prints the call trace log.
func (t *TUI) DisplayTrace(ctx context.Context, events []m.TraceEvent) error {
	return t.simple.DisplayTrace(ctx, events)
}

// DisplayCoverage prints per-block counters and the ratio.
func (t *TUI) DisplayCoverage(ctx context.Context, program string, counts []uint64, ratio float64) error {
	return t.simple.DisplayCoverage(ctx, program, counts, ratio)
}

// DisplayMutationPlan seeds the live view with the mutant total.
func (t *TUI) DisplayMutationPlan(ctx context.Context, mutants int, threads int) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.send(planMsg{mutants: mutants, threads: threads})
}

// DisplayStartingMutant updates the current-mutant line.
func (t *TUI) DisplayStartingMutant(ctx context.Context, mutant m.Mutant) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.send(startedMsg{id: mutant.ID})
}

// DisplayCompletedMutant advances the progress bar.
func (t *TUI) DisplayCompletedMutant(ctx context.Context, result m.SiteResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.send(completedMsg{status: result.Status})
}

// DisplayReports prints saved mutation reports.
func (t *TUI) DisplayReports(ctx context.Context, reports []m.RunReport) error {
	return t.simple.DisplayReports(ctx, reports)
}

// DisplayScore shows the final mutation score in the live view.
func (t *TUI) DisplayScore(ctx context.Context, score float64) {
	if err := ctx.Err(); err != nil {
		return
	}

	if t.program == nil {
		t.simple.DisplayScore(ctx, score)
		return
	}

	t.send(scoreMsg{score: score})
}

func (t *TUI) send(msg tea.Msg) {
	if t.program == nil {
		return
	}

	t.program.Send(msg)
}

type planMsg struct {
	mutants int
	threads int
}

type startedMsg struct {
	id string
}

type completedMsg struct {
	status m.MutantStatus
}

type scoreMsg struct {
	score float64
}

// mutateModel is the Bubble Tea model for the live mutation run view.
type mutateModel struct {
	bar       progress.Model
	total     int
	threads   int
	completed int
	killed    int
	survived  int
	current   string
	score     float64
	haveScore bool
	quitting  bool
}

func newMutateModel() mutateModel {
	return mutateModel{
		bar: progress.New(progress.WithDefaultGradient()),
	}
}

func (mm mutateModel) Init() tea.Cmd {
	return nil
}

func (mm mutateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 0 {
			mm.bar.Width = width
		}

		return mm, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			mm.quitting = true
			return mm, tea.Quit
		}

		return mm, nil
	case planMsg:
		mm.total = msg.mutants
		mm.threads = msg.threads

		return mm, nil
	case startedMsg:
		mm.current = msg.id
		return mm, nil
	case completedMsg:
		mm.completed++

		switch msg.status {
		case m.Killed:
			mm.killed++
		case m.Survived:
			mm.survived++
		case m.Skipped, m.Error:
			// Counted in completed only.
		}

		return mm, nil
	case scoreMsg:
		mm.score = msg.score
		mm.haveScore = true

		return mm, nil
	}

	return mm, nil
}

func (mm mutateModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Overdub - mutation run"))
	b.WriteString("\n\n")

	percent := 0.0
	if mm.total > 0 {
		percent = float64(mm.completed) / float64(mm.total)
	}

	fmt.Fprintf(&b, "  %s\n\n", mm.bar.ViewAs(percent))
	fmt.Fprintf(&b, "  %d/%d mutants on %d worker(s)\n", mm.completed, mm.total, mm.threads)
	fmt.Fprintf(&b, "  %s  %s\n",
		killedStyle.Render(fmt.Sprintf("%d killed", mm.killed)),
		survivedStyle.Render(fmt.Sprintf("%d survived", mm.survived)),
	)

	if mm.current != "" && !mm.haveScore {
		fmt.Fprintf(&b, "  %s\n", mutedStyle.Render("testing "+mm.current))
	}

	if mm.haveScore {
		fmt.Fprintf(&b, "\n  Mutation score: %.2f%%\n", mm.score*100)
	}

	if !mm.quitting {
		b.WriteString(mutedStyle.Render("\n  q: quit\n"))
	}

	return b.String()
}
