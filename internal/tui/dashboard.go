// Package tui renders the dashboard in the terminal. Every pane observes one
// controller cell; updates are coalesced per pane and drawn on the tview loop.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/akave-ai/akavelog-dash/internal/controller"
	"github.com/akave-ai/akavelog-dash/internal/form"
	"github.com/akave-ai/akavelog-dash/internal/logstream"
	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/poller"
)

const (
	accentTag   = "[#ff69b4]"
	accentReset = "[-]"
	fieldWidth  = 40
)

var (
	uiBorderColor = tcell.ColorGray
	uiTitleColor  = tcell.ColorHotPink
)

// Dashboard is the terminal front end of a controller.
type Dashboard struct {
	app       *tview.Application
	ctrl      *controller.Controller
	log       zerolog.Logger
	apiURL    string
	scheduler *frameScheduler

	ctx    context.Context
	cancel context.CancelFunc

	header     *tview.TextView
	errView    *tview.TextView
	formPages  *tview.Pages
	form       *tview.Form
	table      *tview.Table
	logsView   *tview.TextView
	statusView *tview.TextView
	left       *tview.Flex

	// Render-loop state; only touched from tview callbacks.
	formType   string
	fields     map[string]*tview.InputField
	titleField *tview.InputField
	items      []model.InputItem
	focusOrder []tview.Primitive
	focusIdx   int

	unsubscribe []func()
	stopOnce    sync.Once
}

// New builds the widgets. Nothing runs until Run.
func New(ctrl *controller.Controller, apiURL string, log zerolog.Logger) *Dashboard {
	app := tview.NewApplication().EnableMouse(true)
	d := &Dashboard{
		app:       app,
		ctrl:      ctrl,
		log:       log.With().Str("component", "tui").Logger(),
		apiURL:    apiURL,
		scheduler: newFrameScheduler(app, 30, 100*time.Millisecond),
		fields:    make(map[string]*tview.InputField),
	}

	d.header = tview.NewTextView().SetDynamicColors(true)
	d.header.SetText(fmt.Sprintf("%sakavelog%s dashboard   API %s   poll every %s   input type %s",
		accentTag, accentReset, tview.Escape(apiURL), ctrl.PollInterval(), ctrl.InputType()))

	d.errView = tview.NewTextView().SetDynamicColors(true)

	d.form = tview.NewForm()
	d.form.SetBorder(true).SetTitle(accentText("Create " + ctrl.InputType() + " input")).SetTitleAlign(tview.AlignLeft)
	d.form.SetBorderColor(uiBorderColor)
	d.form.SetCancelFunc(func() {
		d.focusIdx = 1
		d.app.SetFocus(d.table)
	})
	loading := newBoxedTextView("Create " + ctrl.InputType() + " input")
	loading.SetText("[gray]Loading input config…[-]")
	d.formPages = tview.NewPages().
		AddPage("loading", loading, true, true).
		AddPage("form", d.form, true, false)

	d.table = tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	d.table.SetBorder(true).SetTitle(accentText("Inputs")).SetTitleAlign(tview.AlignLeft)
	d.table.SetBorderColor(uiBorderColor)
	d.table.SetSelectedFunc(func(row, _ int) { d.sendTestLog(row - 1) })

	d.logsView = newBoxedTextView("Incoming logs")
	d.logsView.SetScrollable(true).SetWrap(true)

	d.statusView = newBoxedTextView("Upload status")

	d.left = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 1, 0, false).
		AddItem(d.errView, 0, 0, false).
		AddItem(d.formPages, 9, 0, true).
		AddItem(d.table, 0, 1, false).
		AddItem(d.logsView, 0, 2, false)
	main := tview.NewFlex().
		AddItem(d.left, 0, 3, true).
		AddItem(d.statusView, 44, 0, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(main, 0, 1, true).
		AddItem(buildFooter(), 1, 0, false)
	d.app.SetRoot(root, true)

	d.focusOrder = []tview.Primitive{d.formPages, d.table, d.logsView}
	d.installKeybindings()
	return d
}

func newBoxedTextView(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	tv.SetBorder(true)
	if title != "" {
		tv.SetTitle(accentText(title)).SetTitleAlign(tview.AlignLeft)
	}
	tv.SetBorderColor(uiBorderColor)
	tv.SetTitleColor(uiTitleColor)
	return tv
}

func accentText(s string) string { return accentTag + s + accentReset }

func buildFooter() *tview.TextView {
	return tview.NewTextView().SetDynamicColors(true).SetText(
		accentText("Tab") + " Next pane  " + accentText("Esc") + " Leave form  " +
			accentText("Enter") + " Send test log  " + accentText("r") + " Refresh inputs  " +
			accentText("x") + " Dismiss error  " + accentText("q") + " Quit",
	)
}

func (d *Dashboard) installKeybindings() {
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			d.Stop()
			return nil
		}
		// The form owns Tab and printable keys while it has focus.
		if d.form.HasFocus() {
			return event
		}
		switch event.Key() {
		case tcell.KeyTab:
			d.cycleFocus(1)
			return nil
		case tcell.KeyBacktab:
			d.cycleFocus(-1)
			return nil
		}
		switch event.Rune() {
		case 'q', 'Q':
			d.Stop()
			return nil
		case 'r':
			go func() { _ = d.ctrl.RefreshInputs(d.ctx) }()
			return nil
		case 'x':
			d.ctrl.DismissError()
			return nil
		}
		return event
	})
}

func (d *Dashboard) cycleFocus(delta int) {
	n := len(d.focusOrder)
	d.focusIdx = ((d.focusIdx+delta)%n + n) % n
	d.app.SetFocus(d.focusOrder[d.focusIdx])
}

// Run mounts the controller and blocks until the user quits or ctx ends.
func (d *Dashboard) Run(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)
	defer d.cancel()

	d.subscribe()
	d.scheduler.Start()

	go func() {
		if err := d.ctrl.Mount(d.ctx); err != nil {
			d.log.Error().Err(err).Msg("mount")
		}
	}()
	go func() {
		<-d.ctx.Done()
		d.Stop()
	}()

	err := d.app.Run()
	d.shutdown()
	return err
}

// Stop tears the controller down and stops the application.
func (d *Dashboard) Stop() {
	d.stopOnce.Do(func() {
		d.ctrl.Teardown()
		d.app.Stop()
	})
}

func (d *Dashboard) shutdown() {
	d.ctrl.Teardown()
	for _, fn := range d.unsubscribe {
		fn()
	}
	d.scheduler.Stop()
}

// subscribe wires every cell to its pane. Render functions read the latest
// value when they run, so a coalesced frame never draws a stale snapshot.
func (d *Dashboard) subscribe() {
	c := d.ctrl
	d.unsubscribe = append(d.unsubscribe,
		c.ErrorCell().Subscribe(func(string) { d.scheduler.Schedule("error", d.renderError) }),
		c.Form.Cell().Subscribe(func(form.Snapshot) { d.scheduler.Schedule("form", d.renderForm) }),
		c.SubmittingCell().Subscribe(func(bool) { d.scheduler.Schedule("submit", d.renderSubmit) }),
		c.Inputs.Cell().Subscribe(func([]model.InputItem) { d.scheduler.Schedule("inputs", d.renderInputs) }),
		c.Logs.Cell().Subscribe(func(poller.Value[[]model.RecentLog]) { d.scheduler.Schedule("logs", d.renderLogs) }),
		c.Status.Cell().Subscribe(func(poller.Value[model.UploadStatus]) { d.scheduler.Schedule("status", d.renderStatus) }),
	)
	d.scheduler.Schedule("error", d.renderError)
	d.scheduler.Schedule("form", d.renderForm)
	d.scheduler.Schedule("inputs", d.renderInputs)
	d.scheduler.Schedule("logs", d.renderLogs)
	d.scheduler.Schedule("status", d.renderStatus)
}

func (d *Dashboard) renderError() {
	msg := d.ctrl.Err()
	if msg == "" {
		d.errView.Clear()
		d.left.ResizeItem(d.errView, 0, 0)
		return
	}
	d.errView.SetText("[red::b]Error:[-::-] " + tview.Escape(msg) + "  [gray](x to dismiss)[-]")
	d.left.ResizeItem(d.errView, 1, 0)
}

func (d *Dashboard) renderForm() {
	snap := d.ctrl.Form.Snapshot()
	if !snap.Available {
		d.formPages.SwitchToPage("loading")
		return
	}
	if d.formType != snap.Info.Type || len(d.fields) != len(snap.Info.Fields) {
		d.buildForm(snap)
	}
	if d.titleField.GetText() != snap.Title {
		d.titleField.SetText(snap.Title)
	}
	for name, field := range d.fields {
		if v := snap.Value(name); field.GetText() != v {
			field.SetText(v)
		}
	}
	d.formPages.SwitchToPage("form")
}

func (d *Dashboard) buildForm(snap form.Snapshot) {
	focused := d.formPages.HasFocus()
	d.form.Clear(true)
	d.fields = make(map[string]*tview.InputField, len(snap.Info.Fields))

	d.titleField = tview.NewInputField().
		SetLabel("title").
		SetText(snap.Title).
		SetFieldWidth(fieldWidth).
		SetPlaceholder("my-" + snap.Info.Type + "-input").
		SetChangedFunc(d.ctrl.Form.SetTitle)
	d.form.AddFormItem(d.titleField)

	for _, f := range snap.Info.Fields {
		name := f.Name
		field := tview.NewInputField().
			SetLabel(fieldLabel(f)).
			SetText(snap.Value(name)).
			SetFieldWidth(fieldWidth).
			SetPlaceholder(f.Example).
			SetAcceptanceFunc(fieldAccept(f)).
			SetChangedFunc(func(text string) { d.ctrl.Form.SetValue(name, text) })
		d.fields[name] = field
		d.form.AddFormItem(field)
	}
	d.form.AddButton(submitLabel(d.ctrl.SubmittingCell().Get()), d.submit)
	d.formType = snap.Info.Type
	if focused {
		d.app.SetFocus(d.form)
	}
}

func (d *Dashboard) renderSubmit() {
	submitting := d.ctrl.SubmittingCell().Get()
	if d.form.GetButtonCount() == 0 {
		return
	}
	d.form.GetButton(0).SetLabel(submitLabel(submitting)).SetDisabled(submitting)
}

func (d *Dashboard) submit() {
	if d.ctrl.SubmittingCell().Get() {
		return
	}
	go func() {
		item, err := d.ctrl.Create(d.ctx)
		switch {
		case errors.Is(err, controller.ErrBusy), errors.Is(err, controller.ErrUnavailable):
		case err != nil:
			d.log.Debug().Err(err).Msg("create failed")
		default:
			d.log.Info().Str("id", item.ID).Msg("created from form")
		}
	}()
}

func (d *Dashboard) renderInputs() {
	d.items = d.ctrl.Inputs.Items()
	d.table.Clear()
	for col, h := range []string{"Title", "Ingest path", "State"} {
		d.table.SetCell(0, col, tview.NewTableCell(accentText(h)).SetSelectable(false).SetExpansion(1))
	}
	if len(d.items) == 0 {
		d.table.SetCell(1, 0, tview.NewTableCell("[gray]No inputs yet. Create one above.[-]").SetSelectable(false))
		return
	}
	for i, item := range d.items {
		for col, text := range formatInputRow(item) {
			d.table.SetCell(i+1, col, tview.NewTableCell(tview.Escape(text)).SetExpansion(1))
		}
	}
}

func (d *Dashboard) sendTestLog(idx int) {
	if idx < 0 || idx >= len(d.items) {
		return
	}
	item := d.items[idx]
	go func() {
		if err := d.ctrl.SendTestLog(d.ctx, item); err != nil {
			d.log.Debug().Err(err).Str("input", item.ID).Msg("send test log failed")
		}
	}()
}

func (d *Dashboard) renderLogs() {
	d.logsView.SetText(formatLogs(logstream.NewestFirst(d.ctrl.Logs.Logs())))
	d.logsView.ScrollToBeginning()
}

func (d *Dashboard) renderStatus() {
	st, ok := d.ctrl.Status.Status()
	d.statusView.SetText(formatStatus(st, ok, time.Now()))
}
