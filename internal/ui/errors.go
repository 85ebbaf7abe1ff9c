package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"itkit/internal/domain"
	"itkit/internal/logging"
	"itkit/internal/storage"
)

// maxStackLines bounds the stack trace shown per failure
const maxStackLines = 10

// ErrorViewer displays failed scenarios in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
	log     *logrus.Entry
}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer(st storage.Storage) *ErrorViewer {
	return &ErrorViewer{storage: st, log: logging.For("viewer")}
}

// View displays failed scenarios in an interactive TUI. Toggling a scenario
// resolved with R is saved back through the storage right away.
func (ev *ErrorViewer) View(output *domain.RunOutput) error {
	if len(output.Details) == 0 {
		color.Green("✓ No scenario failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i := range output.Details {
		list.AddItem(listItemText(output.Details[i], i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(" Scenario Failures (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ",
			len(output.Details), len(storage.UnresolvedScenarios(output))))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(output.Details) {
			rec := output.Details[index]
			statsView.SetText(formatRecordStats(rec))
			detailsView.SetText(formatRecordDetails(rec)).ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(output.Details) {
					output.Details[index].Resolved = !output.Details[index].Resolved
					list.SetItemText(index, listItemText(output.Details[index], index), "")
					updateHeader()
					updateDetails()
					if err := ev.storage.SaveOutput(output); err != nil {
						ev.log.WithError(err).Warn("could not save resolved status")
					}
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(rec domain.ScenarioRecord, index int) string {
	if rec.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, tview.Escape(rec.Scenario))
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(rec.Scenario))
}

// formatRecordStats formats the header line for a failed scenario
func formatRecordStats(rec domain.ScenarioRecord) string {
	workDir := rec.WorkDir
	if workDir == "" {
		workDir = "Unknown directory"
	}
	return fmt.Sprintf("[cyan]fixture:[white] [yellow]%s[white]\n[cyan]dir:[white] %s\n",
		tview.Escape(rec.Fixture), tview.Escape(workDir))
}

// formatRecordDetails formats problems and test failures using tview color tags
func formatRecordDetails(rec domain.ScenarioRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Scenario: %s[white]\n\n", tview.Escape(rec.Scenario))

	if len(rec.Problems) > 0 {
		b.WriteString("[yellow]Problems:[white]\n")
		for _, p := range rec.Problems {
			fmt.Fprintf(&b, "  - %s\n", tview.Escape(p))
		}
		b.WriteString("\n")
	}

	for _, failure := range rec.Failures {
		fmt.Fprintf(&b, "[red]%s[white] %s.%s\n", failure.Kind, tview.Escape(failure.ClassName), tview.Escape(failure.TestName))
		if failure.Type != "" {
			fmt.Fprintf(&b, "[cyan]Type:[white] %s\n", tview.Escape(failure.Type))
		}
		if failure.Message != "" {
			fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(failure.Message))
		}
		if failure.Stack != "" {
			lines := strings.Split(strings.TrimRight(failure.Stack, "\n"), "\n")
			b.WriteString("[yellow]Stack Trace:[white]\n")
			for i, line := range lines {
				if i == maxStackLines {
					fmt.Fprintf(&b, "  [gray]... and %d more lines[white]\n", len(lines)-maxStackLines)
					break
				}
				fmt.Fprintf(&b, "  %s\n", tview.Escape(line))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
